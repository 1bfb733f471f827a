// Package textenc converts text between Go strings (UTF-8) and the ANSI code
// page the trading client's windows use (GBK).
package textenc

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"

	"github.com/Norgate-AV/htauto/internal/apperr"
)

var (
	errInvalidUTF8     = errors.New("text is not valid UTF-8")
	errMalformedNative = errors.New("byte sequence is not valid in the native encoding")
)

// Codec converts strings to and from the native window encoding.
type Codec interface {
	ToNative(text string) ([]byte, error)
	FromNative(b []byte) (string, error)
}

// Bridge is a Codec backed by an x/text encoding.
type Bridge struct {
	enc encoding.Encoding
}

// NewBridge returns a Bridge over enc.
func NewBridge(enc encoding.Encoding) *Bridge {
	return &Bridge{enc: enc}
}

// GBK is the bridge used for the client's ANSI window API calls.
var GBK = NewBridge(simplifiedchinese.GBK)

// ToNative encodes text. Empty text yields nil, meaning "no value" to the window API.
func (b *Bridge) ToNative(text string) ([]byte, error) {
	if text == "" {
		return nil, nil
	}

	if !utf8.ValidString(text) {
		return nil, &apperr.EncodingError{Direction: apperr.ToNative, Err: errInvalidUTF8}
	}

	out, err := b.enc.NewEncoder().Bytes([]byte(text))
	if err != nil {
		return nil, &apperr.EncodingError{Direction: apperr.ToNative, Err: err}
	}

	return out, nil
}

// FromNative decodes native bytes. Bytes that are not valid in the native
// encoding fail instead of being replaced.
func (b *Bridge) FromNative(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	out, err := b.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", &apperr.EncodingError{Direction: apperr.FromNative, Err: err}
	}

	// x/text decoders substitute U+FFFD for malformed input rather than failing,
	// and GBK has no encoding for U+FFFD itself.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", &apperr.EncodingError{Direction: apperr.FromNative, Err: errMalformedNative}
	}

	return string(out), nil
}

// ToNative encodes text with the GBK bridge.
func ToNative(text string) ([]byte, error) { return GBK.ToNative(text) }

// FromNative decodes raw with the GBK bridge.
func FromNative(raw []byte) (string, error) { return GBK.FromNative(raw) }
