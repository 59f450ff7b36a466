// Package datasource opens dump files and decodes them to text.
package datasource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Source yields the raw bytes of a dump.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// ErrUnreadable reports a dump that could not be read or decoded. It is the
// only fatal input error of a run.
var ErrUnreadable = errors.New("datasource: input unreadable")

// DefaultEncodings is tried in order when no encoding list is configured.
var DefaultEncodings = []string{"utf-8", "windows-1252"}

var bom = []byte{0xEF, 0xBB, 0xBF}

// ReadText reads src fully and decodes it with the first encoding of
// encodings that accepts the bytes. The result is NFC-normalized. It also
// returns the name of the encoding used.
func ReadText(ctx context.Context, src Source, encodings []string) (string, string, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", ErrUnreadable, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", "", fmt.Errorf("%w: read: %w", ErrUnreadable, err)
	}
	return Decode(raw, encodings)
}

// Decode converts raw to text using the first matching encoding.
func Decode(raw []byte, encodings []string) (string, string, error) {
	if len(encodings) == 0 {
		encodings = DefaultEncodings
	}
	for _, name := range encodings {
		text, ok, err := decodeAs(raw, name)
		if err != nil {
			return "", "", fmt.Errorf("%w: %w", ErrUnreadable, err)
		}
		if ok {
			return norm.NFC.String(text), canonical(name), nil
		}
	}
	return "", "", fmt.Errorf("%w: no encoding of %s matched", ErrUnreadable, strings.Join(encodings, ", "))
}

func decodeAs(raw []byte, name string) (string, bool, error) {
	if canonical(name) == "utf-8" {
		raw = bytes.TrimPrefix(raw, bom)
		if !utf8.Valid(raw) {
			return "", false, nil
		}
		return string(raw), true, nil
	}
	enc, err := lookup(name)
	if err != nil {
		return "", false, err
	}
	out, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false, nil
	}
	return string(out), true, nil
}

func canonical(name string) string {
	switch n := strings.ToLower(strings.TrimSpace(name)); n {
	case "utf8", "utf-8":
		return "utf-8"
	case "cp1252", "windows-1252", "win1252":
		return "windows-1252"
	case "latin1", "latin-1", "iso-8859-1":
		return "iso-8859-1"
	case "latin9", "iso-8859-15":
		return "iso-8859-15"
	default:
		return n
	}
}

func lookup(name string) (encoding.Encoding, error) {
	switch canonical(name) {
	case "windows-1252":
		return charmap.Windows1252, nil
	case "iso-8859-1":
		return charmap.ISO8859_1, nil
	case "iso-8859-15":
		return charmap.ISO8859_15, nil
	}
	return nil, fmt.Errorf("unsupported encoding %q", name)
}

// Supported reports whether name is an encoding Decode understands.
func Supported(name string) bool {
	if canonical(name) == "utf-8" {
		return true
	}
	_, err := lookup(name)
	return err == nil
}
