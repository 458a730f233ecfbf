package spec

import "fmt"

// Copy returns a record that shares no mutable state with r.
func (r *Record) Copy() *Record {
	if r == nil {
		return nil
	}

	return &Record{
		Name:     r.Name,
		URL:      r.URL,
		Request:  r.Request.Copy(),
		Response: r.Response.Copy(),
		Extra:    copyMap(r.Extra),
	}
}

// Copy returns a body that shares no mutable state with b.
func (b *Body) Copy() *Body {
	if b == nil {
		return nil
	}

	c := &Body{
		Method:            b.Method,
		StatusCode:        b.StatusCode,
		RepresentationRef: b.RepresentationRef,
		Credentials:       copyValue(b.Credentials),
		Representation:    b.Representation.Copy(),
		Extra:             copyMap(b.Extra),
	}

	if b.Header != nil {
		c.Header = make(map[string]string, len(b.Header))
		for k, v := range b.Header {
			c.Header[k] = v
		}
	}

	if b.RawRepresentation != nil {
		c.RawRepresentation = String(*b.RawRepresentation)
	}

	return c
}

// Copy returns a representation that shares no mutable state with r.
func (r *Representation) Copy() *Representation {
	if r == nil {
		return nil
	}

	c := &Representation{
		AsText: r.AsText,
		AsJSON: copyValue(r.AsJSON),
		AsXML:  r.AsXML,
	}

	if doc, ok := r.Document(); ok {
		c.AsXML = doc.Copy()
	}

	return c
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}

	c := make(map[string]interface{}, len(m))
	for k, v := range m {
		c[k] = copyValue(v)
	}

	return c
}

// copyValue deep copies a decoded document value. YAML maps keyed by interface{} come back keyed by string
// so the result can always be encoded as JSON.
func copyValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return copyMap(t)
	case map[interface{}]interface{}:
		c := make(map[string]interface{}, len(t))
		for k, v := range t {
			c[fmt.Sprint(k)] = copyValue(v)
		}
		return c
	case []interface{}:
		c := make([]interface{}, len(t))
		for i, v := range t {
			c[i] = copyValue(v)
		}
		return c
	case map[string]string:
		c := make(map[string]string, len(t))
		for k, v := range t {
			c[k] = v
		}
		return c
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}
