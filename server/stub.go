package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/gofiber/fiber"
	"github.com/gofiber/utils"
	"github.com/sirupsen/logrus"
	"github.com/zerbitx/restspecs/resolver"
	"github.com/zerbitx/restspecs/spec"
)

// stub maps a route back to the spec it was built from. tokens[i] is the url placeholder bound to route
// parameter i.
type stub struct {
	name   string
	tokens []string
}

var placeholder = regexp.MustCompile(`\{[^/{}]+\}`)

// buildStubs indexes routes by method then route path. The first spec to claim a route keeps it.
func buildStubs(records spec.Collection) map[string]map[string]stub {
	stubs := map[string]map[string]stub{}

	for _, r := range records {
		if r.Name == "" || r.URL == "" {
			continue
		}

		method := http.MethodGet
		if r.Request != nil && r.Request.Method != "" {
			method = utils.ToUpper(r.Request.Method)
		}

		routePath, tokens := routeFor(r.URL)

		if _, ok := stubs[method]; !ok {
			stubs[method] = map[string]stub{}
		}

		if _, taken := stubs[method][routePath]; taken {
			continue
		}

		stubs[method][routePath] = stub{name: r.Name, tokens: tokens}
	}

	return stubs
}

// routeFor turns a spec url into a route path: the query and fragment are dropped and each distinct
// {placeholder} becomes a positional route parameter. A placeholder that repeats reuses its parameter, since
// one replacement rewrites every occurrence.
func routeFor(specURL string) (string, []string) {
	path := specURL
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var tokens []string
	params := map[string]string{}
	routePath := placeholder.ReplaceAllStringFunc(path, func(token string) string {
		if param, ok := params[token]; ok {
			return param
		}

		tokens = append(tokens, token)
		params[token] = fmt.Sprintf(":p%d", len(tokens)-1)
		return params[token]
	})

	return routePath, tokens
}

func (s *Server) serveStub(c *fiber.Ctx, method, routePath string) {
	s.mu.RLock()
	st, ok := s.stubs[method][routePath]
	res := s.resolver
	s.mu.RUnlock()

	if !ok {
		c.SendStatus(http.StatusNotFound)
		return
	}

	replacements := make(resolver.Replacements, 0, len(st.tokens))
	for i, token := range st.tokens {
		value, err := url.PathUnescape(utils.ImmutableString(c.Params(fmt.Sprintf("p%d", i))))
		if err != nil {
			c.SendStatus(http.StatusBadRequest)
			return
		}

		replacements = append(replacements, resolver.Replacement{Token: regexp.QuoteMeta(token), Value: value})
	}

	logger := s.logger.WithFields(logrus.Fields{
		"spec":   st.name,
		"path":   c.Path(),
		"method": method,
	})
	logger.Debug("serving")

	record, err := res.GetSpec(context.Background(), st.name, replacements, nil)
	if err != nil {
		logger.WithError(err).Error("failed to resolve spec")
		c.Status(http.StatusInternalServerError).Send(err.Error())
		return
	}

	if record == nil || record.Response == nil {
		c.SendStatus(http.StatusNotFound)
		return
	}

	status := record.Response.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	c.Status(status)

	for header, value := range record.Response.Header {
		c.Set(header, value)
	}

	if record.Response.Representation != nil {
		c.Send(record.Response.Representation.AsText)
	}
}
