package spec

import (
	"fmt"

	"github.com/ohler55/ojg/oj"
)

// ParseJSON decodes one record, or an array of records, from a JSON document.
func ParseJSON(data []byte) (Collection, error) {
	value, err := oj.Parse(data)
	if err != nil {
		return nil, err
	}

	switch v := value.(type) {
	case []interface{}:
		records := make(Collection, 0, len(v))
		for i, item := range v {
			r, err := recordFrom(item)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}
			records = append(records, r)
		}
		return records, nil
	default:
		r, err := recordFrom(v)
		if err != nil {
			return nil, err
		}
		return Collection{r}, nil
	}
}

func recordFrom(value interface{}) (Record, error) {
	var r Record

	fields, ok := value.(map[string]interface{})
	if !ok {
		return r, fmt.Errorf("expected an object, got %T", value)
	}

	var err error
	for key, v := range fields {
		switch key {
		case "name":
			r.Name, err = stringField(key, v)
		case "url":
			r.URL, err = stringField(key, v)
		case "request":
			r.Request, err = bodyFrom(key, v)
		case "response":
			r.Response, err = bodyFrom(key, v)
		default:
			if r.Extra == nil {
				r.Extra = map[string]interface{}{}
			}
			r.Extra[key] = copyValue(v)
		}

		if err != nil {
			return r, err
		}
	}

	return r, nil
}

func bodyFrom(name string, value interface{}) (*Body, error) {
	if value == nil {
		return nil, nil
	}

	fields, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'%s' must be an object, got %T", name, value)
	}

	b := &Body{}

	var err error
	for key, v := range fields {
		switch key {
		case "method":
			b.Method, err = stringField(key, v)
		case "statusCode":
			b.StatusCode, err = intField(key, v)
		case "header":
			b.Header, err = headerField(key, v)
		case "representation":
			if v != nil {
				var text string
				text, err = stringField(key, v)
				b.RawRepresentation = String(text)
			}
		case "representation-ref":
			b.RepresentationRef, err = stringField(key, v)
		case "credentials":
			b.Credentials = copyValue(v)
		default:
			if b.Extra == nil {
				b.Extra = map[string]interface{}{}
			}
			b.Extra[key] = copyValue(v)
		}

		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	return b, nil
}

func stringField(key string, v interface{}) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	default:
		return "", fmt.Errorf("'%s' must be a string, got %T", key, v)
	}
}

func intField(key string, v interface{}) (int, error) {
	switch n := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return int(n), nil
	case float64:
		if n == float64(int(n)) {
			return int(n), nil
		}
	}

	return 0, fmt.Errorf("'%s' must be an integer, got %v", key, v)
}

func headerField(key string, v interface{}) (map[string]string, error) {
	if v == nil {
		return nil, nil
	}

	fields, ok := v.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("'%s' must be an object, got %T", key, v)
	}

	header := make(map[string]string, len(fields))
	for name, value := range fields {
		s, err := stringField(key+"."+name, value)
		if err != nil {
			return nil, err
		}
		header[name] = s
	}

	return header, nil
}
