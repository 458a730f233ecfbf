package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Config", func() {
	vars := []string{
		"HOST", "PORT", "RESTSPECS_DIR", "RESTSPECS_BASE_URL", "RESTSPECS_FETCH_TIMEOUT",
		"RESTSPECS_CATALOG", "RESTSPECS_WATCH_DELAY", "LOG_LEVEL",
	}
	var dir string

	BeforeEach(func() {
		for _, v := range vars {
			Expect(os.Unsetenv(v)).To(Succeed())
		}

		var err error
		dir, err = os.MkdirTemp("", "restspecs-config")
		Expect(err).ShouldNot(HaveOccurred())
	})

	AfterEach(func() {
		for _, v := range vars {
			os.Unsetenv(v)
		}
		os.RemoveAll(dir)
	})

	It("uses defaults when nothing is set", func() {
		cfg, err := Load(filepath.Join(dir, "missing.env"))
		Expect(err).ShouldNot(HaveOccurred())

		Expect(cfg.Host).To(Equal("127.0.0.1"))
		Expect(cfg.Port).To(Equal(8080))
		Expect(cfg.SpecDir).To(Equal("./specs"))
		Expect(cfg.SpecPattern).To(Equal("**/*.spec.json"))
		Expect(cfg.PathPrefix).To(BeEmpty())
		Expect(cfg.APIBasePath).To(Equal("/restspecs"))
		Expect(cfg.FixturePath).To(Equal("/fixtures"))
		Expect(cfg.FetchTimeout).To(Equal(10 * time.Second))
		Expect(cfg.Watch).To(BeFalse())
		Expect(cfg.WatchDelay).To(Equal(250 * time.Millisecond))
		Expect(cfg.Catalog).To(BeEmpty())
		Expect(cfg.HTTPClient().Timeout).To(Equal(10 * time.Second))
		Expect(cfg.Logger().GetLevel()).To(Equal(logrus.InfoLevel))
	})

	It("reads the environment", func() {
		os.Setenv("PORT", "9090")
		os.Setenv("RESTSPECS_BASE_URL", "http://localhost:9090/fixtures")
		os.Setenv("LOG_LEVEL", "debug")
		os.Setenv("RESTSPECS_CATALOG", "/tmp/catalog.json")
		os.Setenv("RESTSPECS_WATCH_DELAY", "1s")

		cfg, err := Load(filepath.Join(dir, "missing.env"))
		Expect(err).ShouldNot(HaveOccurred())
		Expect(cfg.Port).To(Equal(9090))
		Expect(cfg.Catalog).To(Equal("/tmp/catalog.json"))
		Expect(cfg.WatchDelay).To(Equal(time.Second))
		Expect(cfg.BaseURL).To(Equal("http://localhost:9090/fixtures"))
		Expect(cfg.Logger().GetLevel()).To(Equal(logrus.DebugLevel))
	})

	It("reads dotenv files without overriding the environment", func() {
		envFile := filepath.Join(dir, "test.env")
		Expect(os.WriteFile(envFile, []byte("RESTSPECS_DIR=/from/dotenv\nHOST=0.0.0.0\n"), 0644)).To(Succeed())
		os.Setenv("HOST", "10.0.0.1")

		cfg, err := Load(envFile)
		Expect(err).ShouldNot(HaveOccurred())
		Expect(cfg.SpecDir).To(Equal("/from/dotenv"))
		Expect(cfg.Host).To(Equal("10.0.0.1"))
	})

	It("rejects an out of range port", func() {
		os.Setenv("PORT", "70000")

		_, err := Load(filepath.Join(dir, "missing.env"))
		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid configuration"))
	})

	It("rejects an unknown log level", func() {
		os.Setenv("LOG_LEVEL", "chatty")

		_, err := Load(filepath.Join(dir, "missing.env"))
		Expect(err).Should(HaveOccurred())
	})

	It("rejects values that do not parse", func() {
		os.Setenv("RESTSPECS_FETCH_TIMEOUT", "soon")

		_, err := Load(filepath.Join(dir, "missing.env"))
		Expect(err).Should(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("failed to process environment"))
	})
})
