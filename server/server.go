package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"

	"github.com/gofiber/fiber"
	"github.com/gofiber/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/zerbitx/restspecs/encode"
	"github.com/zerbitx/restspecs/resolver"
)

type (
	fiberBinding func(string, ...fiber.Handler) *fiber.Route

	// Server serves resolved specs, the fixture files they reference, and a stub route per spec.
	Server struct {
		app          *fiber.App
		apiBasePath  string
		fixturePath  string
		fixtureRoot  string
		handlerBases map[string]fiberBinding
		pathsSeen    map[string]bool
		logger       logrus.FieldLogger
		port         int
		host         string

		wiring   sync.Mutex
		mu       sync.RWMutex
		resolver *resolver.Resolver
		stubs    map[string]map[string]stub
	}

	config struct {
		port        int
		apiBasePath string
		fixturePath string
		fixtureRoot string
		host        string
		logger      logrus.FieldLogger
	}

	// Option is a function that can modify a default config
	Option func(c *config)
)

// RequestIDHeader carries a fresh id on every response.
const RequestIDHeader = "X-Request-Id"

// New returns a server for res with a default setup on 127.0.0.1:8080, specs under /restspecs and no
// fixture directory.
func New(res *resolver.Resolver, options ...Option) *Server {
	c := &config{
		port:        8080,
		logger:      logrus.StandardLogger(),
		host:        "127.0.0.1",
		apiBasePath: "/restspecs",
		fixturePath: "/fixtures",
	}

	for _, applyOption := range options {
		applyOption(c)
	}

	app := fiber.New(&fiber.Settings{
		ServerHeader:          "RestSpecs",
		DisableStartupMessage: true,
	})

	s := &Server{
		logger:      c.logger,
		app:         app,
		port:        c.port,
		host:        c.host,
		apiBasePath: c.apiBasePath,
		fixturePath: c.fixturePath,
		fixtureRoot: c.fixtureRoot,
		handlerBases: map[string]fiberBinding{
			http.MethodGet:     app.Get,
			http.MethodPost:    app.Post,
			http.MethodDelete:  app.Delete,
			http.MethodPatch:   app.Patch,
			http.MethodPut:     app.Put,
			http.MethodOptions: app.Options,
			http.MethodConnect: app.Connect,
			http.MethodTrace:   app.Trace,
			http.MethodHead:    app.Head,
		},
		pathsSeen: map[string]bool{},
		stubs:     map[string]map[string]stub{},
	}

	var requestID fiber.Handler = func(c *fiber.Ctx) {
		c.Set(RequestIDHeader, uuid.New().String())
		c.Next()
	}
	app.Use(requestID)

	s.initSpecEndpoints()

	if s.fixtureRoot != "" {
		s.logger.WithFields(logrus.Fields{"path": s.fixturePath, "root": s.fixtureRoot}).Debug("fixtures")
		app.Static(s.fixturePath, s.fixtureRoot)
	}

	s.Swap(res)

	return s
}

// Start listens on the configured host and port until the server is shut down.
func (s *Server) Start() error {
	s.logger.WithFields(logrus.Fields{"host": s.host, "port": s.port}).Info("main")
	return s.app.Listen(fmt.Sprintf("%s:%d", s.host, s.port))
}

// Shutdown gracefully shuts down the app
func (s *Server) Shutdown() error {
	if shutdownErr := s.app.Shutdown(); shutdownErr != nil {
		return fmt.Errorf("failed to shutdown app %w", shutdownErr)
	}

	return nil
}

// WithLogger overrides the default logger
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithHost sets the host
func WithHost(host string) Option {
	return func(c *config) {
		c.host = host
	}
}

// WithPort sets the port
func WithPort(port int) Option {
	return func(c *config) {
		c.port = port
	}
}

// WithAPIBasePath sets the base path to list and look up specs
func WithAPIBasePath(basePath string) Option {
	return func(c *config) {
		c.apiBasePath = basePath
	}
}

// WithFixtures serves the files below root at path
func WithFixtures(path, root string) Option {
	return func(c *config) {
		c.fixturePath = path
		c.fixtureRoot = root
	}
}

// Swap serves a new resolver. Stub routes for specs that were not present before are wired in; routes that
// no longer match a spec answer 404.
func (s *Server) Swap(res *resolver.Resolver) {
	stubs := buildStubs(res.Records())

	s.mu.Lock()
	s.resolver = res
	s.stubs = stubs
	s.mu.Unlock()

	s.wiring.Lock()
	defer s.wiring.Unlock()

	for method, routes := range stubs {
		for routePath, st := range routes {
			if s.pathsSeen[method+":"+routePath] {
				continue
			}

			bind, ok := s.handlerBases[method]
			if !ok {
				s.logger.WithFields(logrus.Fields{"spec": st.name, "method": method}).Warn("unsupported method")
				continue
			}

			s.logger.WithFields(logrus.Fields{
				"spec":   st.name,
				"path":   routePath,
				"method": method,
			}).Debug("wiring")

			method, routePath := method, routePath
			bind(routePath, func(c *fiber.Ctx) {
				s.serveStub(c, method, routePath)
			})
			s.pathsSeen[method+":"+routePath] = true
		}
	}
}

func (s *Server) current() *resolver.Resolver {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.resolver
}

func (s *Server) initSpecEndpoints() {
	s.logger.
		WithFields(logrus.Fields{
			http.MethodGet: s.apiBasePath,
		}).Debug("spec endpoints")

	s.app.Get(s.apiBasePath, func(c *fiber.Ctx) {
		s.sendJSON(c, http.StatusOK, s.current().Names())
	})

	s.app.Get(s.apiBasePath+"/:name", func(c *fiber.Ctx) {
		name, err := url.PathUnescape(utils.ImmutableString(c.Params("name")))
		if err != nil {
			c.SendStatus(http.StatusBadRequest)
			return
		}

		var replacements resolver.Replacements
		c.Fasthttp.QueryArgs().VisitAll(func(key, value []byte) {
			replacements = append(replacements, resolver.Replacement{Token: string(key), Value: string(value)})
		})

		record, err := s.current().GetSpec(context.Background(), name, replacements, nil)
		if err != nil {
			s.logger.WithError(err).WithField("spec", name).Error("failed to resolve spec")
			status := http.StatusBadRequest
			if errors.Is(err, resolver.ErrMalformedMarkup) {
				status = http.StatusUnprocessableEntity
			}
			c.Status(status).Send(err.Error())
			return
		}

		if record == nil {
			c.SendStatus(http.StatusNotFound)
			return
		}

		s.sendJSON(c, http.StatusOK, record)
	})
}

func (s *Server) sendJSON(c *fiber.Ctx, status int, v interface{}) {
	c.Status(status)
	c.Set("Content-Type", "application/json")

	if err := encode.JSONIndented(v, c.Fasthttp.Response.BodyWriter()); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
		c.SendStatus(http.StatusInternalServerError)
	}
}
