package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Output formats for terminal mode.
const (
	FormatTable    = "table"
	FormatMarkdown = "markdown"
	FormatCSV      = "csv"
)

// Config represents the application configuration.
type Config struct {
	Connection  Connection  `mapstructure:"connection" yaml:"connection"`
	Preferences Preferences `mapstructure:"preferences" yaml:"preferences"`
}

// Connection holds the parameters of the database to view.
type Connection struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Database string `mapstructure:"database" yaml:"database"`
	Username string `mapstructure:"username" yaml:"username"`
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
}

// Preferences holds presentation and logging settings.
type Preferences struct {
	ShowGUI        bool   `mapstructure:"show_gui" yaml:"show_gui"`
	PreferredTable string `mapstructure:"preferred_table" yaml:"preferred_table"`
	PreviewLimit   int    `mapstructure:"preview_limit" yaml:"preview_limit"`
	Format         string `mapstructure:"format" yaml:"format"`
	LogLevel       string `mapstructure:"log_level" yaml:"log_level"`
	LogFile        string `mapstructure:"log_file" yaml:"log_file"`
}

// Validate reports the first invalid setting.
func (cfg *Config) Validate() error {
	switch cfg.Connection.Driver {
	case DriverMySQL, DriverPostgres:
	case DriverSQLite:
		if cfg.Connection.Database == "" {
			return fmt.Errorf("sqlite requires a database file")
		}
	default:
		return fmt.Errorf("unsupported driver %q", cfg.Connection.Driver)
	}

	if cfg.Connection.Port < 0 || cfg.Connection.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Connection.Port)
	}

	switch cfg.Preferences.Format {
	case FormatTable, FormatMarkdown, FormatCSV:
	default:
		return fmt.Errorf("unsupported format %q", cfg.Preferences.Format)
	}

	if cfg.Preferences.PreviewLimit < 0 {
		return fmt.Errorf("preview limit must not be negative")
	}
	return nil
}

// WithDefaults fills the driver-specific port and user when unset.
func (c Connection) WithDefaults() Connection {
	switch c.Driver {
	case DriverMySQL:
		if c.Port == 0 {
			c.Port = 3306
		}
		if c.Username == "" {
			c.Username = "root"
		}
	case DriverPostgres:
		if c.Port == 0 {
			c.Port = 5432
		}
		if c.Username == "" {
			c.Username = "postgres"
		}
	}
	if c.Host == "" && c.Driver != DriverSQLite {
		c.Host = "127.0.0.1"
	}
	return c
}

// DSN builds the driver connection string from the connection profile.
func (c Connection) DSN() string {
	c = c.WithDefaults()
	switch c.Driver {
	case DriverSQLite:
		return c.Database
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
			Path:   "/" + c.Database,
		}
		if c.Password != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		} else {
			u.User = url.User(c.Username)
		}
		if c.SSLMode != "" {
			u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
		}
		return u.String()
	default:
		mc := gomysql.NewConfig()
		mc.User = c.Username
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Database
		mc.ParseTime = true
		return mc.FormatDSN()
	}
}

// DisplayString returns a human-readable summary of the connection without
// the password.
func (c Connection) DisplayString() string {
	c = c.WithDefaults()
	if c.Driver == DriverSQLite {
		return c.Database
	}
	s := c.Host
	if c.Port > 0 {
		s += ":" + strconv.Itoa(c.Port)
	}
	s += "/" + c.Database
	if c.Username != "" {
		s = c.Username + "@" + s
	}
	return s
}

// ParseDSN parses a mysql://, postgres:// or sqlite:// URL into a Connection.
func ParseDSN(dsn string) (Connection, error) {
	if rest, ok := strings.CutPrefix(dsn, "sqlite://"); ok {
		if rest == "" {
			return Connection{}, fmt.Errorf("invalid DSN: missing sqlite path")
		}
		return Connection{Driver: DriverSQLite, Database: rest}, nil
	}

	u, err := url.Parse(dsn)
	if err != nil {
		return Connection{}, fmt.Errorf("invalid DSN: %w", err)
	}

	conn := Connection{
		Host:     u.Hostname(),
		Database: strings.TrimPrefix(u.Path, "/"),
		SSLMode:  u.Query().Get("sslmode"),
	}

	switch u.Scheme {
	case "mysql", "mariadb":
		conn.Driver = DriverMySQL
	case "postgres", "postgresql":
		conn.Driver = DriverPostgres
	default:
		return Connection{}, fmt.Errorf("invalid DSN: unsupported scheme %q", u.Scheme)
	}

	if u.User != nil {
		conn.Username = u.User.Username()
		if p, ok := u.User.Password(); ok {
			conn.Password = p
		}
	}

	if portStr := u.Port(); portStr != "" {
		conn.Port, err = strconv.Atoi(portStr)
		if err != nil {
			return Connection{}, fmt.Errorf("invalid DSN: port %q", portStr)
		}
	}

	return conn.WithDefaults(), nil
}
