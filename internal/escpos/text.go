package escpos

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
)

// HexDump renders bytes as lowercase, space-separated hex pairs, the form
// every audit line embeds its raw bytes in. Exported so other packages
// (the audit store, in particular) can render the same raw-hex summary
// without duplicating the format.
func HexDump(data []byte) string {
	return hexDump(data)
}

// hexDump renders bytes as lowercase, space-separated hex pairs, the form
// every audit line embeds its raw bytes in.
func hexDump(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(data)*3 - 1)
	for i, c := range data {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02x", c)
	}
	return b.String()
}

// decodeText turns the raw bytes of a TEXT command into a displayable
// string, trying the decoder's configured encoding (d.textEncoding, set
// via WithTextEncoding), then UTF-8, then Latin-1 in that order. Latin-1
// maps every byte value to a rune, so it never fails; it is the total
// fallback.
func (d *Decoder) decodeText(raw []byte) string {
	if s, ok := decodeConfigured(raw, d.textEncoding); ok {
		return s
	}
	if s, ok := decodeStrictUTF8(raw); ok {
		return s
	}
	return decodeLatin1(raw)
}

// decodeConfigured dispatches to the codec named by encoding; any value
// other than "big5" is treated as "gbk".
func decodeConfigured(raw []byte, encoding string) (string, bool) {
	if encoding == "big5" {
		return decodeBig5(raw)
	}
	return decodeGBK(raw)
}

func decodeGBK(raw []byte) (string, bool) {
	decoded, err := simplifiedchinese.GBK.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	s := string(decoded)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

func decodeBig5(raw []byte) (string, bool) {
	decoded, err := traditionalchinese.Big5.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	s := string(decoded)
	if strings.ContainsRune(s, utf8.RuneError) {
		return "", false
	}
	return s, true
}

func decodeStrictUTF8(raw []byte) (string, bool) {
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

func decodeLatin1(raw []byte) string {
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		// charmap.ISO8859_1 maps every byte value to a rune, so this
		// branch is unreachable in practice; kept as a documented total
		// fallback rather than a panic.
		return string(raw)
	}
	return string(decoded)
}
