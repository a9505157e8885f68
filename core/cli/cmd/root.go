package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hyperterse/druidfamiliar/core/application/executor"
	"github.com/hyperterse/druidfamiliar/core/config"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/logging"
	"github.com/hyperterse/druidfamiliar/core/observability"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

// version stores the version string, set via SetVersion()
var version = "dev"

// SetVersion sets the version string (called from main.init())
func SetVersion(v string) {
	version = v
}

// GetVersion returns the current version string
func GetVersion() string {
	return version
}

var (
	configFile   string
	host         string
	port         int
	protocol     string
	method       string
	endpoint     string
	timeout      string
	strictStatus bool
	logLevel     int
	verbose      bool
	logTags      string
	traceSpans   bool
	printMetrics bool
	showVersion  bool

	// Telemetry state of the current invocation, released by Execute
	metricsRegistry *prometheus.Registry
	shutdownTracing observability.ShutdownFunc
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "druidfamiliar",
	Short:         "druidfamiliar\nRun native queries against a Druid broker",
	SilenceUsage:  true,
	SilenceErrors: true, // Errors are logged by cli.Execute
}

// completionCmd generates shell completion scripts
var completionCmd = &cobra.Command{
	Use:          "completion [bash|zsh|fish|powershell]",
	Short:        "Generate shell completion script",
	Hidden:       true,
	ValidArgs:    []string{"bash", "zsh", "fish", "powershell"},
	Args:         cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(out)
		case "zsh":
			return cmd.Root().GenZshCompletion(out)
		case "fish":
			return cmd.Root().GenFishCompletion(out, true)
		case "powershell":
			return cmd.Root().GenPowerShellCompletion(out)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	err := rootCmd.Execute()
	if flushErr := flushTelemetry(); err == nil {
		err = flushErr
	}
	return err
}

func init() {
	rootCmd.AddCommand(completionCmd)
	rootCmd.Flags().BoolVarP(&showVersion, "version", "v", false, "Print the installed version and exit")

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "file", "f", "", "Path to the YAML configuration file")
	flags.StringVar(&host, "host", "", "Broker host or IP (overrides config file)")
	flags.IntVar(&port, "port", 0, "Broker port (overrides config file)")
	flags.StringVar(&protocol, "protocol", "", "Protocol: http or https (overrides config file)")
	flags.StringVar(&method, "method", "", "HTTP method: GET or POST (overrides config file)")
	flags.StringVar(&endpoint, "endpoint", "", "Query endpoint path (overrides config file)")
	flags.StringVar(&timeout, "timeout", "", "Request timeout, e.g. 30s (overrides config file)")
	flags.BoolVar(&strictStatus, "strict", false, "Treat non-2xx broker responses as failures")
	flags.IntVar(&logLevel, "log-level", 0, "Log level: 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG (overrides config file)")
	flags.BoolVar(&verbose, "verbose", false, "Enable verbose logging (sets log level to DEBUG)")
	flags.StringVar(&logTags, "log-tags", "", "Filter logs by tags (comma-separated, use -tag to exclude). Overrides DRUIDFAMILIAR_LOG_TAGS env var")
	flags.BoolVar(&traceSpans, "trace", false, "Export query spans over OTLP (overrides config file)")
	flags.BoolVar(&printMetrics, "metrics", false, "Print query metrics to stderr when the command finishes")

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		if showVersion {
			fmt.Fprintln(cmd.OutOrStdout(), version)
			return nil
		}
		return cmd.Help()
	}
}

// loadConfig reads the config file, if any, and applies flag overrides on top
func loadConfig() (*config.Config, error) {
	// Set log level early so config loading honours --verbose
	applyLogLevel(0)

	cfg := config.Default()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, logging.WithTag("config", err)
		}
		cfg = loaded
	} else {
		config.LoadEnvFiles("")
	}
	applyLogLevel(cfg.LogLevel)

	b := &cfg.Broker
	if host != "" {
		b.Host = host
	}
	if port != 0 {
		b.Port = port
	}
	if protocol != "" {
		b.Protocol = protocol
	}
	if method != "" {
		b.Method = method
	}
	if endpoint != "" {
		b.Endpoint = endpoint
	}
	if timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, logging.WithTag("config", errors.Validation(fmt.Sprintf("invalid --timeout %q", timeout), err))
		}
		b.Timeout = d
	}
	if strictStatus {
		b.StrictStatus = true
	}
	if traceSpans {
		cfg.Tracing.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, logging.WithTag("config", err)
	}
	return cfg, nil
}

// newExecutor builds the executor described by the config file and flags,
// with query metrics and, when enabled, span export
func newExecutor(ctx context.Context) (*executor.Executor, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled {
		shutdown, err := observability.SetupTracing(ctx, cfg.Tracing.ServiceName, version, cfg.Tracing.Endpoint)
		if err != nil {
			return nil, logging.WithTag("observability", err)
		}
		shutdownTracing = shutdown
	}

	metricsRegistry = prometheus.NewRegistry()
	exec, err := cfg.Broker.NewExecutor(observability.NewMetrics(metricsRegistry))
	if err != nil {
		return nil, logging.WithTag("config", err)
	}
	return exec, nil
}

// flushTelemetry flushes exported spans and prints metrics if requested
func flushTelemetry() error {
	var errs []error
	if shutdownTracing != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			errs = append(errs, logging.WithTag("observability", err))
		}
		shutdownTracing = nil
	}
	if printMetrics && metricsRegistry != nil {
		if err := observability.WriteMetrics(rootCmd.ErrOrStderr(), metricsRegistry); err != nil {
			errs = append(errs, logging.WithTag("observability", err))
		}
	}
	metricsRegistry = nil
	return stderrors.Join(errs...)
}

// applyLogLevel sets the global log level. Flags win over the config file,
// and INFO is used when neither sets one.
func applyLogLevel(fromConfig int) {
	switch {
	case verbose:
		logging.SetLogLevel(logging.LogLevelDebug)
	case logLevel > 0:
		logging.SetLogLevel(logLevel)
	case fromConfig > 0:
		logging.SetLogLevel(fromConfig)
	default:
		logging.SetLogLevel(logging.LogLevelInfo)
	}

	tagFilter := logTags
	if tagFilter == "" {
		tagFilter = os.Getenv("DRUIDFAMILIAR_LOG_TAGS")
	}
	logging.SetTagFilter(tagFilter)
}
