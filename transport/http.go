package transport

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

type (
	// HTTP fetches references with an *http.Client.
	HTTP struct {
		client  *http.Client
		baseURL *url.URL
		logger  logrus.FieldLogger
	}

	httpConfig struct {
		client  *http.Client
		baseURL string
		logger  logrus.FieldLogger
	}

	// HTTPOption modifies the default HTTP transport setup.
	HTTPOption func(c *httpConfig)
)

// NewHTTP returns an HTTP transport using http.DefaultClient unless told otherwise.
func NewHTTP(options ...HTTPOption) (*HTTP, error) {
	c := &httpConfig{
		client: http.DefaultClient,
		logger: logrus.StandardLogger(),
	}

	for _, applyOption := range options {
		applyOption(c)
	}

	t := &HTTP{client: c.client, logger: c.logger}

	if c.baseURL != "" {
		base, err := url.Parse(c.baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base url %s: %w", c.baseURL, err)
		}
		t.baseURL = base
	}

	return t, nil
}

// DefaultHTTP returns an HTTP transport on http.DefaultClient that fetches reference URLs as given.
func DefaultHTTP(logger logrus.FieldLogger) *HTTP {
	return &HTTP{client: http.DefaultClient, logger: logger}
}

// WithClient overrides the default client
func WithClient(client *http.Client) HTTPOption {
	return func(c *httpConfig) {
		c.client = client
	}
}

// WithBaseURL resolves relative reference URLs against base
func WithBaseURL(base string) HTTPOption {
	return func(c *httpConfig) {
		c.baseURL = base
	}
}

// WithHTTPLogger overrides the default logger
func WithHTTPLogger(l logrus.FieldLogger) HTTPOption {
	return func(c *httpConfig) {
		c.logger = l
	}
}

// Fetch performs a GET. Only 2xx and 304 responses count as success; anything else is logged and the
// success callback is not called.
func (t *HTTP) Fetch(req *Request) {
	target, err := t.resolve(req.URL)
	if err != nil {
		t.logger.WithError(err).WithField("url", req.URL).Warn("invalid reference url")
		return
	}

	httpReq, err := http.NewRequestWithContext(req.context(), http.MethodGet, target, nil)
	if err != nil {
		t.logger.WithError(err).WithField("url", target).Warn("failed to build request")
		return
	}

	res, err := t.client.Do(httpReq)
	if err != nil {
		t.logger.WithError(err).WithField("url", target).Warn("failed to fetch reference")
		return
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		t.logger.WithError(err).WithField("url", target).Warn("failed to read reference body")
		return
	}

	if (res.StatusCode < 200 || res.StatusCode >= 300) && res.StatusCode != http.StatusNotModified {
		t.logger.WithFields(logrus.Fields{
			"url":    target,
			"status": res.StatusCode,
		}).Warn("reference fetch was not successful")
		return
	}

	req.succeed(string(body), res.StatusCode, res.Header)
}

func (t *HTTP) resolve(ref string) (string, error) {
	if t.baseURL == nil {
		return ref, nil
	}

	u, err := url.Parse(ref)
	if err != nil {
		return "", err
	}

	return t.baseURL.ResolveReference(u).String(), nil
}
