package edgegrid

import "errors"

// ErrSigning matches every *SigningError with errors.Is.
var ErrSigning = errors.New("edgegrid: signing failed")

// SigningError reports a missing identity field. Field is the configuration
// name of the blank value: clientToken, accessToken or clientSecret.
type SigningError struct {
	Field string
}

func (e *SigningError) Error() string {
	return "edgegrid: " + e.Field + " is required"
}

// Is reports whether target is ErrSigning.
func (e *SigningError) Is(target error) bool {
	return target == ErrSigning
}
