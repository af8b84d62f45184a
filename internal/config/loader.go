package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configDir  = ".dbview"
	configFile = "config"
	configType = "yaml"
	envPrefix  = "DBVIEW"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"dsn":       "dsn",
	"driver":    "connection.driver",
	"host":      "connection.host",
	"port":      "connection.port",
	"database":  "connection.database",
	"user":      "connection.username",
	"password":  "connection.password",
	"sslmode":   "connection.sslmode",
	"gui":       "preferences.show_gui",
	"table":     "preferences.preferred_table",
	"limit":     "preferences.preview_limit",
	"format":    "preferences.format",
	"log-level": "preferences.log_level",
	"log-file":  "preferences.log_file",
}

var defaults = map[string]any{
	"dsn":                         "",
	"connection.driver":           DriverMySQL,
	"connection.host":             "127.0.0.1",
	"connection.port":             0,
	"connection.database":         "",
	"connection.username":         "",
	"connection.password":         "",
	"connection.sslmode":          "",
	"preferences.show_gui":        false,
	"preferences.preferred_table": "",
	"preferences.preview_limit":   5,
	"preferences.format":          FormatTable,
	"preferences.log_level":       "info",
	"preferences.log_file":        "",
}

// RegisterFlags defines the configuration flags on fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("dsn", "", "connection URL (mysql://, postgres:// or sqlite://), overrides the individual connection flags")
	fs.String("driver", DriverMySQL, "database driver (mysql|postgres|sqlite)")
	fs.StringP("host", "H", "127.0.0.1", "database host")
	fs.IntP("port", "P", 0, "database port (default: driver specific)")
	fs.StringP("database", "d", "", "database (schema) name, or file path for sqlite")
	fs.StringP("user", "u", "", "database user")
	fs.String("password", "", "database password (default: OS keychain)")
	fs.String("sslmode", "", "postgres sslmode")
	fs.BoolP("gui", "g", false, "open the interactive viewer instead of printing")
	fs.StringP("table", "t", "", "table to open first in the interactive viewer")
	fs.IntP("limit", "n", 5, "rows printed per table in terminal mode")
	fs.StringP("format", "f", FormatTable, "terminal output format (table|markdown|csv)")
	fs.String("log-level", "info", "log level (debug|info|warn|error)")
	fs.String("log-file", "", "write logs to this file")
}

// Load reads the configuration from path, or ~/.dbview/config.yaml when path
// is empty, then applies DBVIEW_* environment variables and flags.
// A missing default config file is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		dir, err := configDirPath()
		if err != nil {
			return nil, fmt.Errorf("config dir: %w", err)
		}
		v.SetConfigName(configFile)
		v.SetConfigType(configType)
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if dsn := v.GetString("dsn"); dsn != "" {
		conn, err := ParseDSN(dsn)
		if err != nil {
			return nil, err
		}
		cfg.Connection = conn
	}
	cfg.Connection = cfg.Connection.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func configDirPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configDir), nil
}
