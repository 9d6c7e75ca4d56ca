package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Storage drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config holds all configuration options for the todo service
type Config struct {
	Database    DatabaseConfig    `yaml:"database"`
	Server      ServerConfig      `yaml:"server"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Validation  ValidationConfig  `yaml:"validation"`
	Application ApplicationConfig `yaml:"application"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver          string        `yaml:"driver" env:"TODO_DB_DRIVER"`
	Dir             string        `yaml:"dir" env:"TODO_DB_DIR"`
	Filename        string        `yaml:"filename" env:"TODO_DB_FILENAME"`
	DSN             string        `yaml:"dsn" env:"TODO_DB_DSN"`
	MongoURI        string        `yaml:"mongo_uri" env:"TODO_MONGO_URI"`
	MongoDatabase   string        `yaml:"mongo_database" env:"TODO_MONGO_DATABASE"`
	QueryTimeout    time.Duration `yaml:"query_timeout" env:"TODO_DB_QUERY_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"TODO_DB_WRITE_TIMEOUT"`
	DirPermissions  uint32        `yaml:"dir_permissions" env:"TODO_DB_DIR_PERMISSIONS"`
	ConnectAttempts int           `yaml:"connect_attempts" env:"TODO_DB_CONNECT_ATTEMPTS"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr            string        `yaml:"addr" env:"TODO_SERVER_ADDR"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"TODO_SERVER_READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"TODO_SERVER_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"TODO_SERVER_SHUTDOWN_TIMEOUT"`
	AllowedOrigins  []string      `yaml:"allowed_origins" env:"TODO_SERVER_ALLOWED_ORIGINS"`
}

// ScheduleConfig holds calendar settings used by the incoming scopes
type ScheduleConfig struct {
	WeekEndDay string `yaml:"week_end_day" env:"TODO_WEEK_END_DAY"`
}

// ValidationConfig holds request validation limits
type ValidationConfig struct {
	TitleMaxLength       int `yaml:"title_max_length" env:"TODO_VALIDATION_TITLE_MAX"`
	DescriptionMaxLength int `yaml:"description_max_length" env:"TODO_VALIDATION_DESCRIPTION_MAX"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TODO_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"TODO_APP_VERBOSE"`
}

// TelemetryConfig holds tracing configuration
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" env:"TODO_TELEMETRY_SERVICE_NAME"`
	JaegerEndpoint string `yaml:"jaeger_endpoint" env:"TODO_JAEGER_ENDPOINT"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	defaultDBDir := filepath.Join(homeDir, ".todo")

	return &Config{
		Database: DatabaseConfig{
			Driver:          DriverSQLite,
			Dir:             defaultDBDir,
			Filename:        "todo.db",
			MongoDatabase:   "todo",
			QueryTimeout:    10 * time.Second,
			WriteTimeout:    5 * time.Second,
			DirPermissions:  0755,
			ConnectAttempts: 3,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Schedule: ScheduleConfig{
			WeekEndDay: time.Saturday.String(),
		},
		Validation: ValidationConfig{
			TitleMaxLength:       100,
			DescriptionMaxLength: 500,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
		Telemetry: TelemetryConfig{
			ServiceName: "todo-api",
		},
	}
}

// GetDatabasePath returns the full path to the SQLite database file
func (c *Config) GetDatabasePath() string {
	if c.Database.Filename == ":memory:" {
		return c.Database.Filename
	}
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// GetQueryTimeout returns the database query timeout
func (c *Config) GetQueryTimeout() time.Duration {
	return c.Database.QueryTimeout
}

// GetWriteTimeout returns the database write timeout
func (c *Config) GetWriteTimeout() time.Duration {
	return c.Database.WriteTimeout
}

// WeekEnd returns the configured last day of the week
func (c *Config) WeekEnd() (time.Weekday, error) {
	return ParseWeekday(c.Schedule.WeekEndDay)
}

// ParseWeekday parses an English day name, ignoring case
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown day of week %q", s)
}

// LoadFromFile merges the YAML file at path into the configuration.
// Keys missing from the file keep their current values.
func (c *Config) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &ConfigError{Field: "config_file", Message: err.Error()}
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &ConfigError{Field: "config_file", Message: fmt.Sprintf("invalid YAML in %s: %v", path, err)}
	}
	return nil
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if driver := os.Getenv("TODO_DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dir := os.Getenv("TODO_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TODO_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	if dsn := os.Getenv("TODO_DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if uri := os.Getenv("TODO_MONGO_URI"); uri != "" {
		c.Database.MongoURI = uri
	}
	if name := os.Getenv("TODO_MONGO_DATABASE"); name != "" {
		c.Database.MongoDatabase = name
	}
	if timeout := os.Getenv("TODO_DB_QUERY_TIMEOUT"); timeout != "" {
		c.Database.QueryTimeout = ParseDurationWithFallback(timeout, c.Database.QueryTimeout)
	}
	if timeout := os.Getenv("TODO_DB_WRITE_TIMEOUT"); timeout != "" {
		c.Database.WriteTimeout = ParseDurationWithFallback(timeout, c.Database.WriteTimeout)
	}
	if perms := os.Getenv("TODO_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}
	if attempts := os.Getenv("TODO_DB_CONNECT_ATTEMPTS"); attempts != "" {
		c.Database.ConnectAttempts = ParseIntWithFallback(attempts, c.Database.ConnectAttempts)
	}

	// Server configuration
	if addr := os.Getenv("TODO_SERVER_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if timeout := os.Getenv("TODO_SERVER_READ_TIMEOUT"); timeout != "" {
		c.Server.ReadTimeout = ParseDurationWithFallback(timeout, c.Server.ReadTimeout)
	}
	if timeout := os.Getenv("TODO_SERVER_WRITE_TIMEOUT"); timeout != "" {
		c.Server.WriteTimeout = ParseDurationWithFallback(timeout, c.Server.WriteTimeout)
	}
	if timeout := os.Getenv("TODO_SERVER_SHUTDOWN_TIMEOUT"); timeout != "" {
		c.Server.ShutdownTimeout = ParseDurationWithFallback(timeout, c.Server.ShutdownTimeout)
	}
	if origins := os.Getenv("TODO_SERVER_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = SplitList(origins)
	}

	// Schedule configuration
	if day := os.Getenv("TODO_WEEK_END_DAY"); day != "" {
		c.Schedule.WeekEndDay = day
	}

	// Validation configuration
	if maxLen := os.Getenv("TODO_VALIDATION_TITLE_MAX"); maxLen != "" {
		c.Validation.TitleMaxLength = ParseIntWithFallback(maxLen, c.Validation.TitleMaxLength)
	}
	if maxLen := os.Getenv("TODO_VALIDATION_DESCRIPTION_MAX"); maxLen != "" {
		c.Validation.DescriptionMaxLength = ParseIntWithFallback(maxLen, c.Validation.DescriptionMaxLength)
	}

	// Application configuration
	if timeout := os.Getenv("TODO_APP_TIMEOUT"); timeout != "" {
		c.Application.Timeout = ParseDurationWithFallback(timeout, c.Application.Timeout)
	}
	if verbose := os.Getenv("TODO_APP_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	// Telemetry configuration
	if name := os.Getenv("TODO_TELEMETRY_SERVICE_NAME"); name != "" {
		c.Telemetry.ServiceName = name
	}
	if endpoint := os.Getenv("TODO_JAEGER_ENDPOINT"); endpoint != "" {
		c.Telemetry.JaegerEndpoint = endpoint
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	// Validate database configuration
	switch c.Database.Driver {
	case DriverSQLite:
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
	case DriverPostgres:
		if c.Database.DSN == "" {
			return &ConfigError{Field: "database.dsn", Message: "postgres DSN cannot be empty"}
		}
	case DriverMongo:
		if c.Database.MongoURI == "" {
			return &ConfigError{Field: "database.mongo_uri", Message: "mongo URI cannot be empty"}
		}
		if c.Database.MongoDatabase == "" {
			return &ConfigError{Field: "database.mongo_database", Message: "mongo database name cannot be empty"}
		}
	default:
		return &ConfigError{Field: "database.driver", Message: fmt.Sprintf("unsupported driver %q (want sqlite, postgres or mongo)", c.Database.Driver)}
	}
	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}
	if c.Database.ConnectAttempts < 1 {
		return &ConfigError{Field: "database.connect_attempts", Message: "connect attempts must be at least 1"}
	}

	// Validate server configuration
	if c.Server.Addr == "" {
		return &ConfigError{Field: "server.addr", Message: "listen address cannot be empty"}
	}
	if c.Server.ShutdownTimeout <= 0 {
		return &ConfigError{Field: "server.shutdown_timeout", Message: "shutdown timeout must be positive"}
	}

	// Validate schedule configuration
	if _, err := c.WeekEnd(); err != nil {
		return &ConfigError{Field: "schedule.week_end_day", Message: err.Error()}
	}

	// Validate validation configuration
	if c.Validation.TitleMaxLength < 1 {
		return &ConfigError{Field: "validation.title_max_length", Message: "title maximum length must be at least 1"}
	}
	if c.Validation.DescriptionMaxLength < 1 {
		return &ConfigError{Field: "validation.description_max_length", Message: "description maximum length must be at least 1"}
	}

	// Validate application configuration
	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
