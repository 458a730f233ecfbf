package encode

import (
	"encoding/json"
	"io"
)

// JSONIndented encodes a value into a writer with a single space indentation. Markup characters in strings
// are written as-is so XML bodies stay readable.
func JSONIndented(v interface{}, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", " ")
	encoder.SetEscapeHTML(false)

	return encoder.Encode(v)
}
