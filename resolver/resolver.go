// Package resolver looks up spec records by name and prepares them for use in tests: URL placeholders are
// substituted, referenced bodies are fetched, and every body is parsed into text, JSON and XML forms.
package resolver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/zerbitx/restspecs/config"
	"github.com/zerbitx/restspecs/spec"
	"github.com/zerbitx/restspecs/transport"
)

type (
	// Resolver resolves records from an immutable collection. It is safe for concurrent use as long as its
	// transport is.
	Resolver struct {
		records    spec.Collection
		transport  transport.Transport
		pathPrefix string
		logger     logrus.FieldLogger
	}

	options struct {
		transport  transport.Transport
		pathPrefix string
		logger     logrus.FieldLogger
	}

	// Option is a function that can modify a default config
	Option func(o *options)
)

// New returns a resolver over records. Records are copied, so later changes to the slice are not seen.
// Without WithTransport, references are fetched over HTTP with http.DefaultClient.
func New(records spec.Collection, opts ...Option) *Resolver {
	o := &options{
		logger: logrus.StandardLogger(),
	}

	for _, applyOption := range opts {
		applyOption(o)
	}

	if o.transport == nil {
		o.transport = transport.DefaultHTTP(o.logger)
	}

	owned := make(spec.Collection, len(records))
	for i := range records {
		owned[i] = *records[i].Copy()
	}

	return &Resolver{
		records:    owned,
		transport:  o.transport,
		pathPrefix: o.pathPrefix,
		logger:     o.logger,
	}
}

// FromConfig loads the spec directory named by env, or the catalog file when one is configured, and builds
// a resolver over it. References are read from the spec directory, or fetched over HTTP when a base url is
// configured.
func FromConfig(env *config.Env, logger logrus.FieldLogger) (*Resolver, error) {
	var (
		records spec.Collection
		err     error
	)

	if env.Catalog != "" {
		records, err = spec.LoadFile(afero.NewOsFs(), env.Catalog)
	} else {
		records, err = spec.LoadDir(env.SpecDir, env.SpecPattern)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load specs: %w", err)
	}

	var t transport.Transport = transport.NewDir(env.SpecDir, logger)
	if env.BaseURL != "" {
		t, err = transport.NewHTTP(
			transport.WithBaseURL(env.BaseURL),
			transport.WithHTTPLogger(logger),
			transport.WithClient(env.HTTPClient()),
		)
		if err != nil {
			return nil, err
		}
	}

	logger.WithFields(logrus.Fields{
		"dir":   env.SpecDir,
		"specs": len(records),
	}).Info("loaded specs")

	return New(records,
		WithTransport(t),
		WithPathPrefix(env.PathPrefix),
		WithLogger(logger),
	), nil
}

// WithTransport sets the transport used to fetch representation-ref bodies
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithPathPrefix sets a prefix prepended to every reference path before it is fetched
func WithPathPrefix(prefix string) Option {
	return func(o *options) {
		o.pathPrefix = prefix
	}
}

// WithLogger overrides the default logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Records returns a copy of the source collection.
func (r *Resolver) Records() spec.Collection {
	out := make(spec.Collection, len(r.records))
	for i := range r.records {
		out[i] = *r.records[i].Copy()
	}

	return out
}

// Names lists the record names in collection order.
func (r *Resolver) Names() []string {
	return r.records.Names()
}

// GetSpec returns a resolved copy of the first record named name, or nil if there is none.
//
// The response body is resolved before the request body. Non-nil credentials are set on the request, which
// is created if the record has none. Replacements are applied to the url in order.
func (r *Resolver) GetSpec(
	ctx context.Context,
	name string,
	replacements Replacements,
	credentials interface{},
) (*spec.Record, error) {
	source, ok := r.records.Find(name)
	if !ok {
		r.logger.WithField("spec", name).Debug("spec not found")
		return nil, nil
	}

	record := source.Copy()

	if err := r.resolveRepresentation(ctx, record.Response); err != nil {
		return nil, fmt.Errorf("spec %s response: %w", name, err)
	}

	if err := r.resolveRepresentation(ctx, record.Request); err != nil {
		return nil, fmt.Errorf("spec %s request: %w", name, err)
	}

	if credentials != nil {
		if record.Request == nil {
			record.Request = &spec.Body{}
		}
		record.Request.Credentials = credentials
	}

	if len(replacements) > 0 && record.URL != "" {
		url, err := replacements.Apply(record.URL)
		if err != nil {
			return nil, fmt.Errorf("spec %s url: %w", name, err)
		}
		record.URL = url
	}

	return record, nil
}

// FetchReferencedText fetches the path prefix plus referencePath through the transport and blocks until it
// is done. The boolean is false when the transport never reported a body.
func (r *Resolver) FetchReferencedText(ctx context.Context, referencePath string) (string, bool) {
	var (
		contents string
		fetched  bool
	)

	url := r.pathPrefix + referencePath
	r.transport.Fetch(&transport.Request{
		Context:     ctx,
		URL:         url,
		Synchronous: true,
		OnSuccess: func(_ string, _ int, res *transport.Response) {
			contents = res.ResponseText
			fetched = true
		},
	})

	if !fetched {
		r.logger.WithField("url", url).Warn("referenced representation could not be fetched")
	}

	return contents, fetched
}
