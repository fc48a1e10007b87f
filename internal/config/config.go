// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Printer  PrinterConfig  `mapstructure:"printer"`
	Store    StoreConfig    `mapstructure:"store"`
	Security SecurityConfig `mapstructure:"security"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	App      AppConfig      `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         string        `mapstructure:"port" validate:"required"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// StorageConfig represents the local settings/job database configuration
type StorageConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// PrinterConfig represents printer transport configuration
type PrinterConfig struct {
	// Transport selects the printer path once at startup: bluetooth,
	// serial or web. The web transport has no device lifecycle at all.
	Transport      string        `mapstructure:"transport" validate:"required"`
	PaperWidthMm   int           `mapstructure:"paper_width_mm"`
	ScanTimeout    time.Duration `mapstructure:"scan_timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	PrintTimeout   time.Duration `mapstructure:"print_timeout"`
	Serial         SerialConfig  `mapstructure:"serial"`
}

// SerialConfig represents serial port parameters for wired printers
type SerialConfig struct {
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	StopBits int           `mapstructure:"stop_bits"`
	Parity   string        `mapstructure:"parity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// StoreConfig represents the pharmacy identity printed on receipt headers
type StoreConfig struct {
	Name       string `mapstructure:"name" validate:"required"`
	Address    string `mapstructure:"address"`
	Phone      string `mapstructure:"phone"`
	FooterLine string `mapstructure:"footer_line"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from file and environment variables
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variable support
	viper.SetEnvPrefix("PRINT_AGENT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults
	setDefaults()

	// Read config file; a missing file is fine, defaults and env cover it
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8086")
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	// Storage defaults
	viper.SetDefault("storage.path", "./data/print-agent.db")

	// Printer defaults
	viper.SetDefault("printer.transport", "bluetooth")
	viper.SetDefault("printer.paper_width_mm", 58)
	viper.SetDefault("printer.scan_timeout", "8s")
	viper.SetDefault("printer.connect_timeout", "10s")
	viper.SetDefault("printer.print_timeout", "30s")
	viper.SetDefault("printer.serial.baud_rate", 9600)
	viper.SetDefault("printer.serial.data_bits", 8)
	viper.SetDefault("printer.serial.stop_bits", 1)
	viper.SetDefault("printer.serial.parity", "none")
	viper.SetDefault("printer.serial.timeout", "5s")

	// Store identity defaults
	viper.SetDefault("store.name", "Pharmacy")
	viper.SetDefault("store.footer_line", "Thank you for your purchase!")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")
	viper.SetDefault("logging.max_size", 100)
	viper.SetDefault("logging.max_backups", 3)
	viper.SetDefault("logging.max_age", 28)
	viper.SetDefault("logging.compress", true)

	// App defaults
	viper.SetDefault("app.name", "print-agent")
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.environment", "development")
	viper.SetDefault("app.debug", false)
}

// validate validates the loaded configuration
func validate(config *Config) error {
	if config.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	switch config.Printer.Transport {
	case "bluetooth", "serial", "web":
	default:
		return fmt.Errorf("unsupported printer transport: %s", config.Printer.Transport)
	}

	switch config.Printer.PaperWidthMm {
	case 58, 80:
	default:
		return fmt.Errorf("unsupported paper width: %dmm (expected 58 or 80)", config.Printer.PaperWidthMm)
	}

	if config.Store.Name == "" {
		return fmt.Errorf("store name is required")
	}

	if config.Printer.ScanTimeout <= 0 || config.Printer.ConnectTimeout <= 0 {
		return fmt.Errorf("printer scan and connect timeouts must be positive")
	}

	return nil
}

// IsProduction returns whether the app is running in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment returns whether the app is running in development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// GetServerAddr returns the full server address
func (c *Config) GetServerAddr() string {
	return c.Server.Host + ":" + c.Server.Port
}

// DotsPerLine returns the printable dot width for the configured paper.
// Thermal heads print at 8 dots/mm with a 48mm or 72mm printable area.
func (c *PrinterConfig) DotsPerLine() int {
	if c.PaperWidthMm >= 80 {
		return 576
	}
	return 384
}
