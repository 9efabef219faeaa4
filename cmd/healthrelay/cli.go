package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"healthrelay/internal/config"
	"healthrelay/internal/httpapi"
	"healthrelay/internal/logging"
	"healthrelay/internal/relay"
)

// cliFlags mirrors config.Config; only flags the user actually set override lower layers.
type cliFlags struct {
	configPath      string
	envFile         string
	addr            string
	upstreamURL     string
	upstreamTimeout int
	connectTimeout  int
	maxBodyBytes    int64
	logLevel        string
	logFormat       string
	corsOrigins     string
	noCORS          bool
	swagger         bool
}

func newRootCmd() *cobra.Command { return newRootCmdWith(&cliFlags{}) }

// newRootCmdWith constructs the command tree with flags bound to f.
func newRootCmdWith(f *cliFlags) *cobra.Command {
	root := &cobra.Command{
		Use:           "healthrelay",
		Short:         "Relay prediction requests from the health dashboard to the ML service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          func(cmd *cobra.Command, args []string) error { return runServe(cmd, f) },
	}

	pf := root.PersistentFlags()
	pf.StringVar(&f.configPath, "config", "", "Config file (.yaml/.yml/.json/.toml); defaults to $HEALTHRELAY_CONFIG")
	pf.StringVar(&f.envFile, "env-file", "", "Env file to load before reading HEALTHRELAY_* variables (default .env if present)")
	pf.StringVar(&f.addr, "addr", "", "HTTP listen address (default "+config.DefaultAddr+")")
	pf.StringVar(&f.upstreamURL, "upstream-url", "", "Prediction service URL (default "+config.DefaultUpstreamURL+")")
	pf.IntVar(&f.upstreamTimeout, "upstream-timeout", 0, "Upstream timeout in seconds (0 = transport default)")
	pf.IntVar(&f.connectTimeout, "connect-timeout", 0, "Upstream dial timeout in seconds (0 = 30s)")
	pf.Int64Var(&f.maxBodyBytes, "max-body-bytes", 0, "Maximum request body size (default 1MiB)")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level: off|debug|info|warn|error (default info)")
	pf.StringVar(&f.logFormat, "log-format", "", "Log format: json|console (default json)")
	pf.StringVar(&f.corsOrigins, "cors-origins", "", "Comma-separated allowed CORS origins (default *)")
	pf.BoolVar(&f.noCORS, "no-cors", false, "Disable CORS headers")
	pf.BoolVar(&f.swagger, "swagger", false, "Serve Swagger UI under /swagger/")

	serveCmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP relay (default command)",
		Example: "  healthrelay serve --upstream-url http://127.0.0.1:5000/predict",
		RunE:    func(cmd *cobra.Command, args []string) error { return runServe(cmd, f) },
	}
	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Probe the upstream prediction service and exit non-zero if unreachable",
		RunE:  func(cmd *cobra.Command, args []string) error { return runCheck(cmd, f) },
	}
	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "healthrelay", version)
		},
	}
	root.AddCommand(serveCmd, checkCmd, versionCmd)
	return root
}

// resolveConfig layers defaults < config file < environment < flags and validates the result.
func resolveConfig(cmd *cobra.Command, f *cliFlags) (config.Config, error) {
	envFile, required := f.envFile, f.envFile != ""
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile, required); err != nil {
		return config.Config{}, err
	}

	cfg := config.Defaults()
	path := f.configPath
	if path == "" {
		path = os.Getenv("HEALTHRELAY_CONFIG")
	}
	if path != "" {
		fc, err := config.Load(path)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = config.Merge(cfg, fc)
	}
	ec, err := config.FromEnv(os.LookupEnv)
	if err != nil {
		return cfg, err
	}
	cfg = config.Merge(cfg, ec)
	cfg = config.Merge(cfg, flagOverrides(cmd, f))
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func flagOverrides(cmd *cobra.Command, f *cliFlags) config.Config {
	var c config.Config
	changed := cmd.Flags().Changed
	if changed("addr") {
		c.Addr = f.addr
	}
	if changed("upstream-url") {
		c.UpstreamURL = f.upstreamURL
	}
	if changed("upstream-timeout") {
		c.UpstreamTimeoutSeconds = f.upstreamTimeout
	}
	if changed("connect-timeout") {
		c.ConnectTimeoutSeconds = f.connectTimeout
	}
	if changed("max-body-bytes") {
		c.MaxBodyBytes = f.maxBodyBytes
	}
	if changed("log-level") {
		c.LogLevel = f.logLevel
	}
	if changed("log-format") {
		c.LogFormat = f.logFormat
	}
	if changed("cors-origins") {
		c.CORSAllowedOrigins = config.SplitCSV(f.corsOrigins)
	}
	if changed("no-cors") {
		c.CORSDisabled = config.Bool(f.noCORS)
	}
	if changed("swagger") {
		c.Swagger = config.Bool(f.swagger)
	}
	return c
}

func newClient(cfg config.Config) (*relay.Client, error) {
	return relay.New(relay.Config{
		URL:            cfg.UpstreamURL,
		Timeout:        cfg.UpstreamTimeout(),
		ConnectTimeout: cfg.ConnectTimeout(),
	})
}

func runServe(cmd *cobra.Command, f *cliFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}

	// baseCtx outlives graceful shutdown so in-flight forwards can finish first.
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	mux := httpapi.NewMux(client, httpapi.Options{
		Logger:             logger,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		CORSEnabled:        cfg.CORSEnabled(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Swagger:            cfg.SwaggerEnabled(),
		BaseContext:        baseCtx,
	})
	srv := &http.Server{Addr: cfg.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	sigCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", cfg.Addr).
			Str("upstream", client.URL()).
			Bool("cors", cfg.CORSEnabled()).
			Msg("healthrelay listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	logger.Info().Dur("timeout", cfg.ShutdownTimeout()).Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
	}
	cancelBase()
	return nil
}

func runCheck(cmd *cobra.Command, f *cliFlags) error {
	cfg, err := resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	client, err := newClient(cfg)
	if err != nil {
		return err
	}
	if err := client.Ping(cmd.Context()); err != nil {
		return fmt.Errorf("upstream %s unreachable: %w", client.URL(), err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "upstream %s reachable\n", client.URL())
	return nil
}
