package spec

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg/jp"
)

// Representation is a body in its three parallel forms.
//
// AsText is always the raw body text. AsJSON is the parsed JSON value, or AsText when the body is not JSON.
// AsXML is a *etree.Document, or AsText when the body is not well-formed XML.
type Representation struct {
	AsText string
	AsJSON interface{}
	AsXML  interface{}
}

// Document returns the parsed markup document, if the body parsed as XML.
func (r *Representation) Document() (*etree.Document, bool) {
	if r == nil {
		return nil, false
	}

	doc, ok := r.AsXML.(*etree.Document)
	return doc, ok
}

// IsJSON reports whether the body parsed as JSON.
func (r *Representation) IsJSON() bool {
	if r == nil {
		return false
	}

	s, isString := r.AsJSON.(string)
	return !isString || s != r.AsText
}

// MarkupText concatenates every text and CDATA node under the root element in document order.
func (r *Representation) MarkupText() string {
	doc, ok := r.Document()
	if !ok || doc.Root() == nil {
		return ""
	}

	var sb strings.Builder
	collectText(doc.Root(), &sb)

	return sb.String()
}

func collectText(e *etree.Element, sb *strings.Builder) {
	for _, t := range e.Child {
		switch v := t.(type) {
		case *etree.CharData:
			sb.WriteString(v.Data)
		case *etree.Element:
			collectText(v, sb)
		}
	}
}

// XML serializes the parsed document. It returns AsText when the body is not XML.
func (r *Representation) XML() string {
	doc, ok := r.Document()
	if !ok {
		return r.AsText
	}

	s, err := doc.WriteToString()
	if err != nil {
		return r.AsText
	}

	return s
}

// XPath returns the trimmed text of the first element matching path, or "" if nothing matches.
func (r *Representation) XPath(path string) string {
	doc, ok := r.Document()
	if !ok || path == "" {
		return ""
	}

	if el := doc.FindElement(path); el != nil {
		return strings.TrimSpace(el.Text())
	}

	return ""
}

// JSONPath evaluates a JSONPath expression against the parsed JSON body.
func (r *Representation) JSONPath(expr string) ([]interface{}, error) {
	if !r.IsJSON() {
		return nil, fmt.Errorf("representation is not JSON")
	}

	x, err := jp.ParseString(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}

	return x.Get(r.AsJSON), nil
}

// MarshalJSON writes the markup form as its serialized text.
func (r *Representation) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		AsText string      `json:"asText"`
		AsJSON interface{} `json:"asJson"`
		AsXML  string      `json:"asXml"`
	}{
		AsText: r.AsText,
		AsJSON: r.AsJSON,
		AsXML:  r.XML(),
	})
}
