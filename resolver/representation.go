package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/beevik/etree"
	"github.com/ohler55/ojg/oj"
	"github.com/zerbitx/restspecs/spec"
)

// ErrMalformedMarkup is matched by every MalformedMarkupError.
var ErrMalformedMarkup = errors.New(
	"Your response representation may not be well-formed.  " +
		"Possible cause: an XML marker tag like < or & not wrapped in a CDATA")

var errNoRoot = errors.New("document has no single root element")

// MalformedMarkupError is returned when a body declared as XML does not parse as XML.
type MalformedMarkupError struct {
	Cause error
}

// Error implements the error interface
func (e *MalformedMarkupError) Error() string {
	return ErrMalformedMarkup.Error()
}

// Unwrap exposes the parser error.
func (e *MalformedMarkupError) Unwrap() error {
	return e.Cause
}

// Is matches ErrMalformedMarkup.
func (e *MalformedMarkupError) Is(target error) bool {
	return target == ErrMalformedMarkup
}

func (r *Resolver) resolveRepresentation(ctx context.Context, target *spec.Body) error {
	if target == nil {
		return nil
	}

	if target.RepresentationRef != "" {
		target.RawRepresentation = nil
		if text, ok := r.FetchReferencedText(ctx, target.RepresentationRef); ok {
			target.RawRepresentation = spec.String(text)
		}
	}

	if target.RawRepresentation == nil {
		return nil
	}

	text := *target.RawRepresentation

	doc, xmlErr := parseMarkup(text)
	if xmlErr != nil && declaresMarkup(target) {
		return &MalformedMarkupError{Cause: xmlErr}
	}

	resolved := &spec.Representation{
		AsText: text,
		AsJSON: text,
		AsXML:  text,
	}

	if xmlErr == nil {
		resolved.AsXML = doc
	}

	if value, err := parseStructured(text); err == nil {
		resolved.AsJSON = value
	}

	target.Representation = resolved
	return nil
}

func declaresMarkup(target *spec.Body) bool {
	ct, ok := target.ContentType()
	return ok && strings.Contains(strings.ToLower(ct), "xml")
}

// parseMarkup accepts exactly one root element with nothing but whitespace, comments, directives and
// processing instructions around it. CDATA sections survive a round trip, and quotes in text are written
// back unescaped.
func parseMarkup(text string) (*etree.Document, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.PreserveCData = true
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true

	if err := doc.ReadFromString(text); err != nil {
		return nil, err
	}

	roots := 0
	for _, t := range doc.Child {
		switch v := t.(type) {
		case *etree.Element:
			roots++
		case *etree.CharData:
			if strings.TrimSpace(v.Data) != "" {
				return nil, errNoRoot
			}
		}
	}

	if roots != 1 {
		return nil, errNoRoot
	}

	return doc, nil
}

func parseStructured(text string) (interface{}, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("empty JSON document")
	}

	return oj.ParseString(text)
}
