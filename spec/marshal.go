package spec

import "encoding/json"

// MarshalJSON writes the known fields alongside any extra fields the record was loaded with.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = copyValue(v)
	}

	out["name"] = r.Name
	if r.URL != "" {
		out["url"] = r.URL
	}
	if r.Request != nil {
		out["request"] = r.Request
	}
	if r.Response != nil {
		out["response"] = r.Response
	}

	return json.Marshal(out)
}

// MarshalJSON writes the resolved representation when there is one, otherwise the raw inline body.
func (b Body) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(b.Extra)+6)
	for k, v := range b.Extra {
		out[k] = copyValue(v)
	}

	if b.Method != "" {
		out["method"] = b.Method
	}
	if b.StatusCode != 0 {
		out["statusCode"] = b.StatusCode
	}
	if b.Header != nil {
		out["header"] = b.Header
	}
	if b.RepresentationRef != "" {
		out["representation-ref"] = b.RepresentationRef
	}
	if b.Credentials != nil {
		out["credentials"] = copyValue(b.Credentials)
	}

	switch {
	case b.Representation != nil:
		out["representation"] = b.Representation
	case b.RawRepresentation != nil:
		out["representation"] = *b.RawRepresentation
	}

	return json.Marshal(out)
}
