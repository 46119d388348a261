package extract

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// decodeText decodes plain-text bytes. A UTF-8 or UTF-16 byte order mark
// selects the encoding and is stripped; otherwise the bytes are read as UTF-8,
// with invalid sequences replaced by U+FFFD.
func decodeText(data []byte) (string, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return "", fmt.Errorf("decode text: %w", err)
	}
	return string(out), nil
}
