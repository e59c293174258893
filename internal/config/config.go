package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ErrMissingCredentials is returned by Validate when the space id or the
// management token is empty.
var ErrMissingCredentials = errors.New("management.space_id and management.token must be set")

// Config is the root configuration for cmsinit.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
	Management ManagementConfig `mapstructure:"management"`
	Bootstrap  BootstrapConfig  `mapstructure:"bootstrap"`
	Notify     NotifyConfig     `mapstructure:"notify"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// BootstrapOnStart runs one bootstrap as soon as the server is listening.
	BootstrapOnStart bool `mapstructure:"bootstrap_on_start"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	ServiceName  string `mapstructure:"service_name"`
	LogLevel     string `mapstructure:"log_level"`
}

// ManagementConfig identifies the content-management space and the
// credential used against its management API.
type ManagementConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	SpaceID     string        `mapstructure:"space_id"`
	Environment string        `mapstructure:"environment"`
	Token       string        `mapstructure:"token"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type BootstrapConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// NotifyConfig configures the optional NATS event emitted after a content
// type is published. An empty URL disables it.
type NotifyConfig struct {
	NATSURL string `mapstructure:"nats_url"`
	Subject string `mapstructure:"subject"`
}

// Load reads config from the optional YAML file at path, then overlays
// environment variables with the CMSINIT_ prefix (e.g. CMSINIT_MANAGEMENT_TOKEN).
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix("CMSINIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the values the management client cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Management.SpaceID) == "" || strings.TrimSpace(c.Management.Token) == "" {
		return ErrMissingCredentials
	}
	if c.Management.BaseURL == "" {
		return errors.New("management.base_url must be set")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8081)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)
	v.SetDefault("server.bootstrap_on_start", false)

	// Empty endpoint keeps OTEL disabled unless a collector is configured.
	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", true)
	v.SetDefault("telemetry.service_name", "cmsinit")
	v.SetDefault("telemetry.log_level", "info")

	v.SetDefault("management.base_url", "https://api.contentful.com")
	v.SetDefault("management.space_id", "")
	v.SetDefault("management.environment", "master")
	v.SetDefault("management.token", "")
	v.SetDefault("management.timeout", 30*time.Second)

	v.SetDefault("bootstrap.timeout", 2*time.Minute)

	v.SetDefault("notify.nats_url", "")
	v.SetDefault("notify.subject", "cms.content_type.published")
}
