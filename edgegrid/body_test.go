package edgegrid

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "whitespace removed", in: "{\n  \"name\": \"demo\",\n  \"count\": 2\n}\n", want: `{"name":"demo","count":2}`},
		{name: "member order kept", in: `{"b":1,"a":2}`, want: `{"b":1,"a":2}`},
		{name: "fraction zero dropped", in: `{"a":1.0}`, want: `{"a":1}`},
		{name: "exponent expanded", in: `{"a":1e2}`, want: `{"a":100}`},
		{name: "large exponent", in: `[1e21,0.0000001,-0]`, want: `[1e+21,1e-7,0]`},
		{name: "overflow becomes null", in: `[1e400]`, want: `[null]`},
		{name: "duplicate name last wins", in: `{"a":1,"b":0,"a":2}`, want: `{"a":2,"b":0}`},
		{name: "escapes resolved", in: `{"a":"A\/"}`, want: `{"a":"A/"}`},
		{name: "control characters escaped", in: `["tab\there"]`, want: `["tab\there"]`},
		{name: "index names first", in: `{"b":1,"2":0,"1":0,"01":3}`, want: `{"1":0,"2":0,"b":1,"01":3}`},
		{name: "nested", in: `{"x":[{"y":true,"z":null}, false]}`, want: `{"x":[{"y":true,"z":null},false]}`},
		{name: "top-level scalar", in: ` "text" `, want: `"text"`},
		{name: "invalid JSON kept", in: `{not json `, want: `{not json `},
		{name: "trailing data kept", in: `{"a":1} {"b":2}`, want: `{"a":1} {"b":2}`},
		{name: "plain text kept", in: `hello world`, want: `hello world`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(normalizeBody([]byte(tt.in))))
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{name: "shorter than limit", in: "abc", n: 5, want: "abc"},
		{name: "ascii", in: "abcdef", n: 3, want: "abc"},
		{name: "two-byte runes count once", in: strings.Repeat("é", 10), n: 5, want: "ééééé"},
		{name: "three-byte runes count once", in: "日本語テキスト", n: 3, want: "日本語"},
		{name: "multibyte within limit", in: "ééé", n: 3, want: "ééé"},
		{name: "astral runes count twice", in: "😀😀😀", n: 4, want: "😀😀"},
		{name: "split surrogate pair", in: "😀😀", n: 3, want: "😀\uFFFD"},
		{name: "invalid UTF-8 cut by bytes", in: "\xff\xfeabc", n: 3, want: "\xff\xfea"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate([]byte(tt.in), tt.n)
			assert.Equal(t, tt.want, string(got))
			if utf8.ValidString(tt.in) {
				assert.True(t, utf8.Valid(got))
			}
		})
	}
}
