package serv

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Config holds the service configuration
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`
	LogJSON  bool   `mapstructure:"log_json"`

	// Maximum request body size in bytes
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`

	// Requests per second across the endpoint; 0 disables rate limiting
	RateLimit float64 `mapstructure:"rate_limit"`
	RateBurst int     `mapstructure:"rate_burst"`

	CORSAllowedOrigins []string `mapstructure:"cors_allowed_origins"`

	Cache    CacheConfig    `mapstructure:"cache"`
	Upstream UpstreamConfig `mapstructure:"upstream"`

	hostPort string
}

// CacheConfig configures the explanation memo store
type CacheConfig struct {
	// MaxEntries bounds the store; past it the whole store is cleared
	MaxEntries int `mapstructure:"max_entries"`

	// Coalesce shares one in-flight upstream call per key between
	// concurrent identical requests. Off by default.
	Coalesce bool `mapstructure:"coalesce"`
}

// UpstreamConfig configures the completion service client
type UpstreamConfig struct {
	APIKey           string        `mapstructure:"api_key"`
	Model            string        `mapstructure:"model"`
	BaseURL          string        `mapstructure:"base_url"`
	Temperature      float64       `mapstructure:"temperature"`
	MaxTokens        int           `mapstructure:"max_tokens"`
	Timeout          time.Duration `mapstructure:"timeout"`
	DescriptionLimit int           `mapstructure:"description_limit"`
}

// ReadInConfig reads the configuration. configFile may be empty, in which
// case defaults plus environment overrides apply.
func ReadInConfig(configFile string) (*Config, error) {
	return ReadInConfigFS(configFile, afero.NewOsFs())
}

// ReadInConfigFS reads the configuration from the given filesystem
func ReadInConfigFS(configFile string, fs afero.Fs) (*Config, error) {
	vi := newViper(fs)

	if configFile != "" {
		vi.SetConfigFile(configFile)
		if err := vi.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config: %s", configFile)
		}
	}

	c := &Config{}
	if err := vi.Unmarshal(c); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return c, nil
}

func newViper(fs afero.Fs) *viper.Viper {
	vi := viper.New()
	vi.SetFs(fs)

	vi.SetEnvPrefix("EXPLAIND")
	vi.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	vi.AutomaticEnv()

	// The upstream credential rides the conventional variable as well
	_ = vi.BindEnv("upstream.api_key", "OPENAI_API_KEY", "EXPLAIND_UPSTREAM_API_KEY")
	_ = vi.BindEnv("port", "PORT", "EXPLAIND_PORT")

	vi.SetDefault("app_name", "explaind")
	vi.SetDefault("host", "0.0.0.0")
	vi.SetDefault("port", "8080")
	vi.SetDefault("log_level", "info")
	vi.SetDefault("log_json", false)
	vi.SetDefault("max_body_bytes", 1<<16)
	vi.SetDefault("rate_limit", 0)
	vi.SetDefault("rate_burst", 10)
	vi.SetDefault("cors_allowed_origins", []string{"*"})

	vi.SetDefault("cache.max_entries", 1000)
	vi.SetDefault("cache.coalesce", false)

	vi.SetDefault("upstream.model", "gpt-4o-mini")
	vi.SetDefault("upstream.temperature", 0.2)
	vi.SetDefault("upstream.max_tokens", 400)
	vi.SetDefault("upstream.timeout", 60*time.Second)
	vi.SetDefault("upstream.description_limit", 500)

	return vi
}
