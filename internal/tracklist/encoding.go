package tracklist

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Supported encodings
const (
	EncodingUTF8BOM = "utf-8-sig"
	EncodingUTF8    = "utf-8"
	EncodingLatin1  = "latin-1"
	EncodingCP1252  = "cp1252"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NormalizeEncoding maps common aliases onto a supported encoding name.
// Unknown names return "".
func NormalizeEncoding(name string) string {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "utf-8-sig", "utf8-sig":
		return EncodingUTF8BOM
	case "utf-8", "utf8":
		return EncodingUTF8
	case "latin-1", "latin1", "iso-8859-1", "iso8859-1":
		return EncodingLatin1
	case "cp1252", "windows-1252":
		return EncodingCP1252
	default:
		return ""
	}
}

// DetectEncoding guesses the encoding of a complete file
func DetectEncoding(data []byte) string {
	return detectEncoding(data, false)
}

// detectEncoding guesses the encoding of sample. A truncated sample may end
// in the middle of a multi-byte rune.
func detectEncoding(sample []byte, truncated bool) string {
	if bytes.HasPrefix(sample, utf8BOM) {
		return EncodingUTF8BOM
	}
	if utf8.Valid(sample) || (truncated && validUTF8Prefix(sample)) {
		return EncodingUTF8
	}
	// C1 control bytes are printable characters only in cp1252
	for _, b := range sample {
		if b >= 0x80 && b <= 0x9F {
			return EncodingCP1252
		}
	}
	return EncodingLatin1
}

func validUTF8Prefix(b []byte) bool {
	for i := 1; i < utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			return !utf8.FullRune(b[len(b)-i:]) && utf8.Valid(b[:len(b)-i])
		}
	}
	return false
}

// Decode converts raw bytes in the named encoding to a UTF-8 string
func Decode(data []byte, encoding string) (string, error) {
	switch encoding {
	case EncodingUTF8BOM, EncodingUTF8:
		data = bytes.TrimPrefix(data, utf8BOM)
		return strings.ToValidUTF8(string(data), "�"), nil
	case EncodingLatin1:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode latin-1: %w", err)
		}
		return string(out), nil
	case EncodingCP1252:
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode cp1252: %w", err)
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("unsupported encoding %q", encoding)
	}
}
