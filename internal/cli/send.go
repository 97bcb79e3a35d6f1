package cli

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/kbukum/httpservice/component"
	"github.com/kbukum/httpservice/config"
	"github.com/kbukum/httpservice/logger"
	"github.com/kbukum/httpservice/message"
	"github.com/kbukum/httpservice/observability"
	"github.com/kbukum/httpservice/service"
)

const appName = "httpservice"

// fileConfig is the layout of httpservice.yml.
type fileConfig struct {
	config.AppConfig `yaml:",inline" mapstructure:",squash"`
	Service          service.Config `yaml:"service" mapstructure:"service"`
}

type sendFlags struct {
	data       string
	mediaType  string
	ret        string
	host       string
	port       int
	timeout    time.Duration
	persistent bool
	noAuth     bool
	headers    map[string]string
}

func newSendCommand(configPath *string) *cobra.Command {
	var f sendFlags

	cmd := &cobra.Command{
		Use:   "send METHOD PATH",
		Short: "Send one request and print the result",
		Long: `Send one request and print the decoded body, or the full response
with --return response.

For POST and PUT with --type, a JSON --data document is re-encoded as that
type (form, json, yaml, text). Without --type the data is sent verbatim.
For other methods --data is the query string.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runSend(ctx, cmd, *configPath, args[0], args[1], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.data, "data", "d", "", "Request payload")
	flags.StringVarP(&f.mediaType, "type", "t", "", "Media type used to encode --data (form, json, yaml, text)")
	flags.StringVarP(&f.ret, "return", "r", service.ReturnBody, "What to print: body or response")
	flags.StringVar(&f.host, "host", "", "Override service.host")
	flags.IntVarP(&f.port, "port", "p", 0, "Override service.port")
	flags.DurationVar(&f.timeout, "timeout", 0, "Override service.timeout")
	flags.BoolVar(&f.persistent, "persistent", false, "Ask for a keep-alive connection")
	flags.BoolVar(&f.noAuth, "no-auth", false, "Do not send an Authorization header")
	flags.StringToStringVarP(&f.headers, "header", "H", nil, "Extra request headers (Name=value)")
	return cmd
}

func runSend(ctx context.Context, cmd *cobra.Command, configPath, method, path string, f sendFlags) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Logging); err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	applyFlags(&cfg.Service, cmd, f)

	var svcOpts []service.Option
	if cfg.Telemetry.Enabled {
		shutdown, err := initTelemetry(ctx, &cfg.AppConfig)
		if err != nil {
			return err
		}
		defer shutdown()

		inst, err := observability.NewInstrumentation()
		if err != nil {
			return fmt.Errorf("failed to create instrumentation: %w", err)
		}
		svcOpts = append(svcOpts, service.WithInstrumentation(inst))
	}

	comp := service.NewComponent(cfg.Service, svcOpts...)
	registry := component.NewRegistry()
	if err := registry.Register(comp); err != nil {
		return err
	}
	if err := registry.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := registry.StopAll(context.Background()); err != nil {
			logger.Warn("shutdown failed", logger.ErrorFields("stop", err))
		}
	}()

	data, err := payload(method, f)
	if err != nil {
		return err
	}
	opts := []service.RequestOption{service.WithReturn(f.ret)}
	if f.mediaType != "" {
		opts = append(opts, service.WithType(f.mediaType))
	}
	if len(f.headers) > 0 {
		opts = append(opts, service.WithHeaders(f.headers))
	}
	if f.noAuth {
		opts = append(opts, service.WithoutAuth())
	}

	result, err := comp.Service().Send(ctx, method, path, data, opts...)
	if err != nil {
		return err
	}
	return printResult(cmd.OutOrStdout(), result)
}

func loadConfig(configPath string) (*fileConfig, error) {
	var opts []config.LoaderOption
	if configPath != "" {
		opts = append(opts, config.WithConfigFile(configPath))
	}
	cfg := &fileConfig{}
	if err := config.Load(appName, cfg, opts...); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Name == "" {
		cfg.Name = appName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *service.Config, cmd *cobra.Command, f sendFlags) {
	flags := cmd.Flags()
	if flags.Changed("host") {
		cfg.Host = f.host
	}
	if flags.Changed("port") {
		cfg.Port = f.port
	}
	if flags.Changed("timeout") {
		cfg.Timeout = f.timeout
	}
	if flags.Changed("persistent") {
		cfg.Persistent = f.persistent
	}
}

// payload turns --data into the value handed to Send. A JSON document sent
// with an explicit type on a body verb is decoded so the type's encoder
// can render it.
func payload(method string, f sendFlags) (any, error) {
	if f.data == "" {
		return nil, nil
	}
	if f.mediaType == "" || !message.CarriesBody(method) {
		return f.data, nil
	}
	var v any
	if err := json.Unmarshal([]byte(f.data), &v); err != nil {
		return nil, fmt.Errorf("--data must be a JSON document when --type is set: %w", err)
	}
	return v, nil
}

func initTelemetry(ctx context.Context, app *config.AppConfig) (func(), error) {
	tc := observability.DefaultTracerConfig(app.Name)
	tc.Environment = app.Environment
	tc.Endpoint = app.Telemetry.Endpoint
	tc.Insecure = app.Telemetry.Insecure
	tc.SampleRate = app.Telemetry.SampleRate
	tp, err := observability.InitTracer(ctx, tc)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracer: %w", err)
	}

	mc := observability.DefaultMeterConfig(app.Name)
	mc.Environment = app.Environment
	mc.Endpoint = app.Telemetry.Endpoint
	mc.Insecure = app.Telemetry.Insecure
	mp, err := observability.InitMeter(ctx, mc)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return nil, fmt.Errorf("failed to init meter: %w", err)
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("tracer shutdown failed", logger.ErrorFields("shutdown", err))
		}
		if err := mp.Shutdown(shutdownCtx); err != nil {
			logger.Warn("meter shutdown failed", logger.ErrorFields("shutdown", err))
		}
	}, nil
}

func printResult(w io.Writer, result any) error {
	switch r := result.(type) {
	case *message.Response:
		fmt.Fprintf(w, "%s %d %s\n", r.Proto, r.StatusCode, r.Status)
		names := make([]string, 0, len(r.Headers))
		for name := range r.Headers {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "%s: %s\n", name, r.Headers[name])
		}
		fmt.Fprintln(w)
		_, err := w.Write(r.Raw)
		return err
	case string:
		_, err := fmt.Fprintln(w, r)
		return err
	case nil:
		return nil
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
