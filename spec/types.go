package spec

type (
	// Collection is an ordered list of spec records. Order matters: lookups by name take the first match.
	Collection []Record

	// Record describes a named request/response pair.
	Record struct {
		Name     string                 `yaml:"name"`
		URL      string                 `yaml:"url,omitempty"`
		Request  *Body                  `yaml:"request,omitempty"`
		Response *Body                  `yaml:"response,omitempty"`
		Extra    map[string]interface{} `yaml:",inline"`
	}

	// Body is the request or response half of a record.
	//
	// RawRepresentation is the inline body as written in the spec file. Once a record has been resolved,
	// Representation holds the parsed forms of the body.
	Body struct {
		Method            string                 `yaml:"method,omitempty"`
		StatusCode        int                    `yaml:"statusCode,omitempty"`
		Header            map[string]string      `yaml:"header,omitempty"`
		RawRepresentation *string                `yaml:"representation,omitempty"`
		RepresentationRef string                 `yaml:"representation-ref,omitempty"`
		Credentials       interface{}            `yaml:"credentials,omitempty"`
		Representation    *Representation        `yaml:"-"`
		Extra             map[string]interface{} `yaml:",inline"`
	}
)

// ContentType returns the declared Content-Type header, if any.
func (b *Body) ContentType() (string, bool) {
	if b == nil || b.Header == nil {
		return "", false
	}

	ct, ok := b.Header["Content-Type"]
	return ct, ok
}

// Names returns the record names in collection order, skipping nameless records.
func (c Collection) Names() []string {
	names := make([]string, 0, len(c))
	for _, r := range c {
		if r.Name != "" {
			names = append(names, r.Name)
		}
	}

	return names
}

// Find returns the first record with the given name.
func (c Collection) Find(name string) (*Record, bool) {
	if name == "" {
		return nil, false
	}

	for i := range c {
		if c[i].Name == name {
			return &c[i], true
		}
	}

	return nil, false
}

// String returns a pointer to s, for building inline representations.
func String(s string) *string {
	return &s
}
