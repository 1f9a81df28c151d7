package edgegrid

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultMaxBodySize is the number of body characters hashed when MaxBodySize is unset.
	DefaultMaxBodySize = 131072

	// TimestampFormat is ISO 8601 basic format in UTC, e.g. 20240611T093015Z.
	TimestampFormat = "20060102T150405Z"
)

// Material holds the per-request signing inputs.
type Material struct {
	Timestamp     string
	Nonce         string
	HeadersToSign string

	// MaxBodySize caps the hashed body in characters, counted as UTF-16 code
	// units. Zero or negative means DefaultMaxBodySize.
	MaxBodySize int
}

// NewMaterial returns material with the current UTC timestamp and a random UUIDv4 nonce.
func NewMaterial() Material {
	return Material{
		Timestamp: FormatTimestamp(time.Now()),
		Nonce:     uuid.NewString(),
	}
}

// FormatTimestamp renders t in TimestampFormat.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampFormat)
}

func (m Material) maxBodySize() int {
	if m.MaxBodySize <= 0 {
		return DefaultMaxBodySize
	}
	return m.MaxBodySize
}
