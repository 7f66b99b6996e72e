package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type (
	// Config -.
	Config struct {
		App        `yaml:"app"`
		Server     `yaml:"server"`
		Log        `yaml:"logger"`
		Conversion `yaml:"conversion"`
		OTEL       `yaml:"otel"`
	}

	// App -.
	App struct {
		Name    string `env-required:"true" yaml:"name"    env:"APP_NAME"`
		Version string `env-required:"true" yaml:"version" env:"APP_VERSION"`
	}

	// Server -.
	Server struct {
		Port string `env-required:"true" yaml:"port" env:"PORT"`
	}

	// Log -.
	Log struct {
		Level string `env-required:"true" yaml:"log_level"   env:"LOG_LEVEL"`
	}

	// Conversion holds the tunables of the transcoding pipeline. The
	// upload cap, in-flight cap and encoder deadline are configuration,
	// not constants.
	Conversion struct {
		TmpRoot        string        `yaml:"tmp_root"         env:"CONVERT_TMP_ROOT"         env-default:"/tmp/audio-conversion"`
		MaxUploadBytes int64         `yaml:"max_upload_bytes" env:"CONVERT_MAX_UPLOAD_BYTES" env-default:"26214400"`
		MaxInFlight    int           `yaml:"max_in_flight"    env:"CONVERT_MAX_IN_FLIGHT"    env-default:"8"`
		EncoderTimeout time.Duration `yaml:"encoder_timeout"  env:"CONVERT_ENCODER_TIMEOUT"  env-default:"60s"`
		Bitrate        string        `yaml:"bitrate"          env:"CONVERT_BITRATE"          env-default:"192k"`
	}

	OTEL struct {
		JaegerEndpoint string `yaml:"jaeger_endpoint" env:"JAEGER_ENDPOINT"`
		OTLPEndpoint   string `yaml:"otlp_endpoint"   env:"OTLP_ENDPOINT"`
		PrometheusPort string `yaml:"prometheus_port" env:"PROMETHEUS_PORT"`
	}
)

// NewConfig returns app config.
func NewConfig() (*Config, error) {
	cfg := &Config{}

	err := cleanenv.ReadConfig("./config/config.yml", cfg)
	if err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	return cfg, nil
}
