// Package config loads the service settings: built-in defaults, then an optional
// YAML file, then environment variables (a .env file in the working directory is
// loaded into the environment first).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/stuartleeks/home-dash/weather-api/schema"
)

type Server struct {
	Address string `yaml:"address"`
}

type Backend struct {
	Model           string  `yaml:"model"`
	ImageModel      string  `yaml:"imageModel"`
	APIKey          string  `yaml:"apiKey"`
	RateLimit       float64 `yaml:"rateLimit"` // requests per second, 0 disables limiting
	Burst           int     `yaml:"burst"`
	ImageGeneration bool    `yaml:"imageGeneration"`
}

type Weather struct {
	Variant           string `yaml:"variant"`
	ForecastDays      int    `yaml:"forecastDays"` // overrides the variant when set
	HourlyCount       int    `yaml:"hourlyCount"`  // overrides the variant when set
	DefaultCity       string `yaml:"defaultCity"`
	ConsistencyChecks bool   `yaml:"consistencyChecks"`
}

type Telemetry struct {
	InstrumentationKey string `yaml:"instrumentationKey"`
}

type Config struct {
	Server      Server        `yaml:"server"`
	Backend     Backend       `yaml:"backend"`
	Weather     Weather       `yaml:"weather"`
	PresetsFile string        `yaml:"presetsFile"`
	SessionTTL  time.Duration `yaml:"sessionTTL"`
	Telemetry   Telemetry     `yaml:"telemetry"`
}

func Default() Config {
	return Config{
		Server: Server{Address: ":8080"},
		Backend: Backend{
			Model:      "gemini-2.0-flash",
			ImageModel: "imagen-3.0-generate-002",
			RateLimit:  2,
			Burst:      4,
		},
		Weather: Weather{
			Variant:     schema.Classic.Name,
			DefaultCity: "London",
		},
		SessionTTL: 2 * time.Hour,
	}
}

// LoadDotEnv loads .env when it exists. Variables already set win.
func LoadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}
	return nil
}

// Load reads path (when non-empty) over the defaults and applies environment
// overrides. A missing file is only an error if the path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("config file %s not found", path)
		case err != nil:
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	if _, err := cfg.Variant(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && v != "" {
			*target = v
		}
	}
	str("LISTEN_ADDRESS", &c.Server.Address)
	str("GEMINI_API_KEY", &c.Backend.APIKey)
	str("GEMINI_MODEL", &c.Backend.Model)
	str("WEATHER_VARIANT", &c.Weather.Variant)
	str("DEFAULT_CITY", &c.Weather.DefaultCity)
	str("PRESETS_FILE", &c.PresetsFile)
	str("APPLICATIONINSIGHTS_INSTRUMENTATION_KEY", &c.Telemetry.InstrumentationKey)

	if v, ok := lookup("IMAGE_GENERATION"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("IMAGE_GENERATION: %w", err)
		}
		c.Backend.ImageGeneration = b
	}
	return nil
}

// Variant resolves the weather contract, applying any count overrides.
func (c Config) Variant() (schema.Variant, error) {
	v, err := schema.VariantByName(c.Weather.Variant)
	if err != nil {
		return schema.Variant{}, err
	}
	if c.Weather.ForecastDays != 0 {
		v.ForecastDays = c.Weather.ForecastDays
	}
	if c.Weather.HourlyCount != 0 {
		v.HourlyCount = c.Weather.HourlyCount
	}
	if err := v.Validate(); err != nil {
		return schema.Variant{}, err
	}
	return v, nil
}

// Redacted is safe to log.
func (c Config) Redacted() Config {
	if c.Backend.APIKey != "" {
		c.Backend.APIKey = strings.Repeat("*", 8)
	}
	return c
}
