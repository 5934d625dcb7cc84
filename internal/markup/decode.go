package markup

import (
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Decode reads a generator document and returns it as UTF-8, honouring a
// byte order mark or a charset declared in a meta tag.
func Decode(r io.Reader) (string, error) {
	utf8Reader, err := charset.NewReader(r, "text/html")
	if err != nil {
		return "", fmt.Errorf("detecting charset: %w", err)
	}
	data, err := io.ReadAll(utf8Reader)
	if err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}
	return string(data), nil
}
