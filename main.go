package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/zerbitx/restspecs/config"
	"github.com/zerbitx/restspecs/encode"
	"github.com/zerbitx/restspecs/resolver"
	"github.com/zerbitx/restspecs/server"
	"github.com/zerbitx/restspecs/spec"
)

var rootCmd = &cobra.Command{
	Use:           "restspecs",
	Short:         "Resolve and serve REST spec fixtures",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve resolved specs, their fixture files and a stub route per spec (default command)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var (
	replaceFlags    []string
	credentialsFlag string
)

var getCmd = &cobra.Command{
	Use:   "get NAME",
	Short: "Print a resolved spec as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		replacements := make(resolver.Replacements, 0, len(replaceFlags))
		for _, f := range replaceFlags {
			r, err := resolver.ParseReplacement(f)
			if err != nil {
				return err
			}
			replacements = append(replacements, r)
		}

		var credentials interface{}
		if credentialsFlag != "" {
			if err := json.Unmarshal([]byte(credentialsFlag), &credentials); err != nil {
				return fmt.Errorf("invalid --credentials: %w", err)
			}
		}

		res, err := resolver.FromConfig(cfg, logger)
		if err != nil {
			return err
		}

		record, err := res.GetSpec(cmd.Context(), args[0], replacements, credentials)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("no spec named %q", args[0])
		}

		return encode.JSONIndented(record, cmd.OutOrStdout())
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List spec names",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}

		records, err := spec.LoadDir(cfg.SpecDir, cfg.SpecPattern)
		if err != nil {
			return err
		}

		for _, name := range records.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}

		return nil
	},
}

var ignoreFlags []string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every spec file, its references and the files around it",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		if err := spec.ValidateDir(specFs(cfg), cfg.SpecPattern, ignoreFlags...); err != nil {
			return err
		}

		logger.WithField("dir", cfg.SpecDir).Info("all specs valid")
		return nil
	},
}

var (
	outFlag    string
	formatFlag string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Concatenate every spec file into one catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		records, err := spec.Load(specFs(cfg), cfg.SpecPattern)
		if err != nil {
			return err
		}

		return writeOutput(cmd, func(w io.Writer) error {
			logger.WithFields(logrus.Fields{"specs": len(records), "out": outFlag}).Info("writing catalog")
			return spec.WriteCatalog(w, records, spec.CatalogFormat(formatFlag))
		})
	},
}

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint",
	Short: "Print the API fingerprint of the spec files and the bodies they reference",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		fingerprint, err := spec.Fingerprint(specFs(cfg), cfg.SpecPattern, logger)
		if err != nil {
			return err
		}

		return writeOutput(cmd, func(w io.Writer) error {
			_, err := fmt.Fprintln(w, fingerprint)
			return err
		})
	},
}

func init() {
	getCmd.Flags().StringArrayVarP(&replaceFlags, "replace", "r", nil, "url replacement as token=value (repeatable)")
	getCmd.Flags().StringVar(&credentialsFlag, "credentials", "", "JSON value set as request.credentials")

	validateCmd.Flags().StringArrayVar(&ignoreFlags, "ignore", nil, "file allowed to exist without a spec referencing it (repeatable)")

	catalogCmd.Flags().StringVarP(&outFlag, "out", "o", "", "write to this file instead of stdout")
	catalogCmd.Flags().StringVar(&formatFlag, "format", string(spec.CatalogJSON), "catalog format: json or amd")
	fingerprintCmd.Flags().StringVarP(&outFlag, "out", "o", "", "write to this file instead of stdout")

	rootCmd.AddCommand(serveCmd, getCmd, listCmd, validateCmd, catalogCmd, fingerprintCmd)
}

func specFs(cfg *config.Env) afero.Fs {
	return afero.NewBasePathFs(afero.NewOsFs(), cfg.SpecDir)
}

func writeOutput(cmd *cobra.Command, write func(w io.Writer) error) error {
	if outFlag == "" {
		return write(cmd.OutOrStdout())
	}

	f, err := os.Create(outFlag)
	if err != nil {
		return err
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}

func setup() (*config.Env, *logrus.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	return cfg, cfg.Logger(), nil
}

func serve(ctx context.Context) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}

	res, err := resolver.FromConfig(cfg, logger)
	if err != nil {
		return err
	}

	s := server.New(res,
		server.WithLogger(logger),
		server.WithHost(cfg.Host),
		server.WithPort(cfg.Port),
		server.WithAPIBasePath(cfg.APIBasePath),
		server.WithFixtures(cfg.FixturePath, cfg.SpecDir),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errc := make(chan error, 2)

	if cfg.Watch {
		go func() {
			errc <- spec.Watch(ctx, cfg.SpecDir, cfg.WatchDelay, logger, func() {
				reloaded, err := resolver.FromConfig(cfg, logger)
				if err != nil {
					logger.WithError(err).Error("failed to reload specs")
					return
				}
				s.Swap(reloaded)
			})
		}()
	}

	go func() {
		errc <- s.Start()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return s.Shutdown()
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
