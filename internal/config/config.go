package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type HTTPServer struct {
	Addr string `yaml:"address" env:"HTTP_ADDR" env-default:":8080"`
}

type Database struct {
	WriteURL        string        `yaml:"write_url" env:"DATABASE_URL" env-required:"true"`
	ReadURL         string        `yaml:"read_url" env:"DATABASE_READ_URL"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"30m"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" env:"DB_CONN_MAX_IDLE_TIME" env-default:"5m"`
}

type Redis struct {
	URL string `yaml:"url" env:"REDIS_URL" env-default:"redis://localhost:6379/0"`
}

type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"60s"`
	OpTimeout     time.Duration `yaml:"op_timeout" env:"CACHE_OP_TIMEOUT" env-default:"1s"`
	RetryInterval time.Duration `yaml:"retry_interval" env:"CACHE_RETRY_INTERVAL" env-default:"5s"`
}

type Telemetry struct {
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"development"`
	HTTPServer `yaml:"http_server"`
	Database   Database    `yaml:"database"`
	Redis      Redis       `yaml:"redis"`
	Cache      CacheConfig `yaml:"cache"`
	Telemetry  Telemetry   `yaml:"telemetry"`
}

func MustLoad() *Config {

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {

		flags := flag.String("config", "", "path to the config file")

		flag.Parse()

		configPath = *flags
	}

	// Environment-only deployments run without a config file.
	if configPath == "" {

		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("can not read config from environment: %s", err.Error())
		}

		return &cfg
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("can not read config file: %s", err.Error())
	}

	return &cfg
}

// ReadDSN returns the replica route, falling back to the primary when no
// replica is configured.
func (d *Database) ReadDSN() string {
	if d.ReadURL != "" {
		return d.ReadURL
	}

	return d.WriteURL
}

func (d *Database) WriteDSN() string {
	return d.WriteURL
}
