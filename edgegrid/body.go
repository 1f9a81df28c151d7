package edgegrid

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// MarshalBody serializes v as compact JSON with object members in sorted
// order, the form Sign hashes for object bodies.
func MarshalBody(v any) ([]byte, error) {
	data, err := json.Marshal(v, json.Deterministic(true))
	if err != nil {
		return nil, fmt.Errorf("edgegrid: marshal body: %w", err)
	}
	return data, nil
}

// normalizeBody re-serializes JSON bodies in canonical compact form: numbers
// in shortest round-trip notation, strings minimally escaped, and for
// duplicate member names the last value at the first name's position. Array
// index names come first in ascending order. Anything that is not valid JSON
// is hashed as is.
func normalizeBody(body []byte) []byte {
	if len(body) == 0 {
		return body
	}

	dec := jsontext.NewDecoder(bytes.NewReader(body), jsontext.AllowDuplicateNames(true))
	root, err := decodeNode(dec)
	if err != nil {
		return body
	}
	if _, err := dec.ReadToken(); !errors.Is(err, io.EOF) {
		return body
	}

	var buf bytes.Buffer
	enc := jsontext.NewEncoder(&buf)
	if err := encodeNode(enc, root); err != nil {
		return body
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// node is a decoded JSON value that keeps object member order.
type node struct {
	kind   jsontext.Kind
	scalar jsontext.Token
	names  []string
	fields map[string]*node
	items  []*node
}

func decodeNode(dec *jsontext.Decoder) (*node, error) {
	tok, err := dec.ReadToken()
	if err != nil {
		return nil, err
	}

	switch kind := tok.Kind(); kind {
	case '{':
		n := &node{kind: kind, fields: make(map[string]*node)}
		for dec.PeekKind() != '}' {
			nameTok, err := dec.ReadToken()
			if err != nil {
				return nil, err
			}
			name := nameTok.String()
			value, err := decodeNode(dec)
			if err != nil {
				return nil, err
			}
			if _, seen := n.fields[name]; !seen {
				n.names = append(n.names, name)
			}
			n.fields[name] = value
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return n, nil
	case '[':
		n := &node{kind: kind}
		for dec.PeekKind() != ']' {
			item, err := decodeNode(dec)
			if err != nil {
				return nil, err
			}
			n.items = append(n.items, item)
		}
		if _, err := dec.ReadToken(); err != nil {
			return nil, err
		}
		return n, nil
	case '0':
		f, err := strconv.ParseFloat(tok.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return nil, err
		}
		if math.IsInf(f, 0) {
			return &node{kind: 'n', scalar: jsontext.Null}, nil
		}
		if f == 0 {
			f = 0 // drops the sign of -0
		}
		return &node{kind: kind, scalar: jsontext.Float(f)}, nil
	case '"':
		return &node{kind: kind, scalar: jsontext.String(tok.String())}, nil
	case 't':
		return &node{kind: kind, scalar: jsontext.True}, nil
	case 'f':
		return &node{kind: kind, scalar: jsontext.False}, nil
	default:
		return &node{kind: 'n', scalar: jsontext.Null}, nil
	}
}

func encodeNode(enc *jsontext.Encoder, n *node) error {
	switch n.kind {
	case '{':
		if err := enc.WriteToken(jsontext.BeginObject); err != nil {
			return err
		}
		for _, name := range memberOrder(n.names) {
			if err := enc.WriteToken(jsontext.String(name)); err != nil {
				return err
			}
			if err := encodeNode(enc, n.fields[name]); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndObject)
	case '[':
		if err := enc.WriteToken(jsontext.BeginArray); err != nil {
			return err
		}
		for _, item := range n.items {
			if err := encodeNode(enc, item); err != nil {
				return err
			}
		}
		return enc.WriteToken(jsontext.EndArray)
	default:
		return enc.WriteToken(n.scalar)
	}
}

// memberOrder lists array index names (canonical integers below 2^32-1) in
// ascending order, then the remaining names in insertion order.
func memberOrder(names []string) []string {
	var indexes, rest []string
	for _, name := range names {
		if _, ok := arrayIndex(name); ok {
			indexes = append(indexes, name)
		} else {
			rest = append(rest, name)
		}
	}
	slices.SortFunc(indexes, func(a, b string) int {
		x, _ := arrayIndex(a)
		y, _ := arrayIndex(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	})
	return append(indexes, rest...)
}

func arrayIndex(name string) (uint64, bool) {
	if name == "" || (len(name) > 1 && name[0] == '0') {
		return 0, false
	}
	v, err := strconv.ParseUint(name, 10, 64)
	if err != nil || v >= math.MaxUint32 {
		return 0, false
	}
	return v, true
}

// truncate cuts body to at most n UTF-16 code units, the length unit of the
// string the body is read into. A surrogate pair split by the cut leaves a
// lone surrogate, encoded as U+FFFD. Bodies that are not valid UTF-8 are cut
// at n bytes.
func truncate(body []byte, n int) []byte {
	// A UTF-8 body never has more UTF-16 units than bytes.
	if len(body) <= n {
		return body
	}
	if !utf8.Valid(body) {
		return body[:n]
	}

	units := utf16.Encode([]rune(string(body)))
	if len(units) <= n {
		return body
	}
	return []byte(string(utf16.Decode(units[:n])))
}
