package config

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/hyperterse/druidfamiliar/core/application/executor"
	"github.com/hyperterse/druidfamiliar/core/domain/interfaces"
	"github.com/hyperterse/druidfamiliar/core/infrastructure/transport"
	"github.com/hyperterse/druidfamiliar/core/observability"
	"github.com/hyperterse/druidfamiliar/core/shared/errors"
)

const (
	// DefaultPort is the Druid broker's default plaintext port
	DefaultPort = 8082
	// DefaultServiceName names this client in exported traces
	DefaultServiceName = "druidfamiliar"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the client configuration file
type Config struct {
	Broker   Broker  `yaml:"broker" validate:"required"`
	Tracing  Tracing `yaml:"tracing"`
	LogLevel int     `yaml:"log_level" validate:"gte=0,lte=4"`
}

// Tracing controls OTLP span export
type Tracing struct {
	Enabled     bool   `yaml:"enabled"`
	Endpoint    string `yaml:"endpoint"`
	ServiceName string `yaml:"service_name" validate:"required_if=Enabled true"`
}

// Broker describes the Druid node queries are sent to
type Broker struct {
	Host         string            `yaml:"host" validate:"required"`
	Port         int               `yaml:"port" validate:"gt=0,lte=65535"`
	Endpoint     string            `yaml:"endpoint" validate:"omitempty,startswith=/"`
	Protocol     string            `yaml:"protocol"`
	Method       string            `yaml:"method"`
	Headers      map[string]string `yaml:"headers"`
	Timeout      time.Duration     `yaml:"timeout" validate:"gte=0"`
	StrictStatus bool              `yaml:"strict_status"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		Broker: Broker{
			Host:     "localhost",
			Port:     DefaultPort,
			Endpoint: executor.DefaultEndpoint,
			Protocol: executor.DefaultProtocol,
			Method:   executor.DefaultHTTPMethod,
			Timeout:  transport.DefaultTimeout,
		},
		Tracing: Tracing{
			Endpoint:    observability.DefaultOTLPEndpoint,
			ServiceName: DefaultServiceName,
		},
	}
}

// Load reads the config file at path, loading .env files next to it first
func Load(path string) (*Config, error) {
	LoadEnvFiles(filepath.Dir(path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML config content. Env placeholders are substituted before
// decoding and unset fields keep their defaults.
func Parse(data []byte) (*Config, error) {
	content, err := SubstituteEnvVars(string(data))
	if err != nil {
		return nil, errors.Validation("failed to substitute environment variables", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal([]byte(content), cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints. Protocol and method are checked by the
// executor when it is built.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !stderrors.As(err, &validationErrs) {
		return errors.Validation("invalid configuration", err)
	}
	messages := make([]string, 0, len(validationErrs))
	for _, fieldErr := range validationErrs {
		messages = append(messages, fmt.Sprintf("%s failed '%s' validation", fieldErr.Namespace(), fieldErr.Tag()))
	}
	return errors.Validation("invalid configuration: "+strings.Join(messages, "; "), nil)
}

// ExecutorOptions translates the broker settings into executor options.
// m may be nil.
func (b Broker) ExecutorOptions(m *observability.Metrics) []executor.Option {
	var client interfaces.Doer = transport.NewClient(b.Timeout)
	if b.StrictStatus {
		client = transport.StrictStatus(client)
	}

	opts := []executor.Option{
		executor.WithClient(client),
		executor.WithMetrics(m),
	}
	if b.Endpoint != "" {
		opts = append(opts, executor.WithEndpoint(b.Endpoint))
	}
	if b.Protocol != "" {
		opts = append(opts, executor.WithProtocol(b.Protocol))
	}
	if b.Method != "" {
		opts = append(opts, executor.WithHTTPMethod(b.Method))
	}
	if b.Headers != nil {
		opts = append(opts, executor.WithHeaders(b.Headers))
	}
	return opts
}

// NewExecutor builds an executor for the broker
func (b Broker) NewExecutor(m *observability.Metrics) (*executor.Executor, error) {
	return executor.New(b.Host, b.Port, b.ExecutorOptions(m)...)
}
