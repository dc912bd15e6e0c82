package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers accepted by store.driver
const (
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// SettingsFile is the base name looked up in the settings directory
const SettingsFile = "rushhour"

// StoreSettings selects where solutions are persisted
type StoreSettings struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Dir    string `mapstructure:"dir"`
}

// Settings holds the server's runtime configuration
type Settings struct {
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	PuzzlesDir    string        `mapstructure:"puzzlesDir"`
	LogLevel      string        `mapstructure:"logLevel"`
	MaxStates     int           `mapstructure:"maxStates"`
	ProgressEvery int           `mapstructure:"progressEvery"`
	Store         StoreSettings `mapstructure:"store"`
}

// Addr returns host:port
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadSettings reads defaults, then an optional rushhour.{json,yaml} from
// dir, then RUSHHOUR_* environment variables (store.dsn -> RUSHHOUR_STORE_DSN).
// A missing settings file is not an error.
func LoadSettings(dir string) (*Settings, error) {
	v := viper.New()

	v.SetDefault("host", "localhost")
	v.SetDefault("port", 8080)
	v.SetDefault("puzzlesDir", "puzzles")
	v.SetDefault("logLevel", "info")
	v.SetDefault("maxStates", 1_000_000)
	v.SetDefault("progressEvery", 10_000)

	v.SetDefault("store.driver", StoreFile)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.dir", "solutions")

	v.SetEnvPrefix("RUSHHOUR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if dir != "" {
		v.SetConfigName(SettingsFile)
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading settings file: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("error decoding settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the values LoadSettings cannot default away
func (s *Settings) Validate() error {
	switch s.Store.Driver {
	case StoreFile, StoreSQLite, StorePostgres:
	default:
		return fmt.Errorf("unknown store driver %q", s.Store.Driver)
	}
	if s.Store.Driver == StorePostgres && s.Store.DSN == "" {
		return errors.New("store.dsn is required for the postgres driver")
	}
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.MaxStates < 0 {
		return fmt.Errorf("maxStates cannot be negative: %d", s.MaxStates)
	}
	return nil
}
