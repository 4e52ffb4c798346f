package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/satishbabariya/chorm/runtime/connection"
	"github.com/satishbabariya/chorm/runtime/pool"
)

// AppFs is the filesystem the CLI reads and writes project files on.
var AppFs = afero.NewOsFs()

// FileName is the base name of the project config file.
const FileName = ".chorm"

// Config holds the CLI configuration.
type Config struct {
	URL        string           `mapstructure:"url"`
	Connection ConnectionConfig `mapstructure:"connection"`
	Pool       PoolConfig       `mapstructure:"pool"`
	Migrations MigrationsConfig `mapstructure:"migrations"`
	Seeders    SeedersConfig    `mapstructure:"seeders"`
	Models     ModelsConfig     `mapstructure:"models"`
	Debug      bool             `mapstructure:"debug"`
}

// ConnectionConfig mirrors connection.Config.
type ConnectionConfig struct {
	Protocol string        `mapstructure:"protocol"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Database string        `mapstructure:"database"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// PoolConfig mirrors pool.Config.
type PoolConfig struct {
	MinConnections   int           `mapstructure:"min_connections"`
	MaxConnections   int           `mapstructure:"max_connections"`
	IdleTimeout      time.Duration `mapstructure:"idle_timeout"`
	AcquireTimeout   time.Duration `mapstructure:"acquire_timeout"`
	ValidateOnBorrow bool          `mapstructure:"validate_on_borrow"`
}

// MigrationsConfig locates migration files and the ledger table.
type MigrationsConfig struct {
	Dir   string `mapstructure:"dir"`
	Table string `mapstructure:"table"`
}

// SeedersConfig locates seeder scripts.
type SeedersConfig struct {
	Dir string `mapstructure:"dir"`
}

// ModelsConfig controls make:model output.
type ModelsConfig struct {
	Dir     string `mapstructure:"dir"`
	Package string `mapstructure:"package"`
}

// New returns a viper instance with chorm defaults, config paths and
// CHORM_* environment bindings.
func New() (*viper.Viper, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetFs(AppFs)
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath(home)
	v.AddConfigPath(filepath.Join(home, ".config", "chorm"))

	v.SetEnvPrefix("CHORM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v, nil
}

func setDefaults(v *viper.Viper) {
	conn := connection.DefaultConfig()
	v.SetDefault("url", "")
	v.SetDefault("connection.protocol", conn.Protocol)
	v.SetDefault("connection.host", conn.Host)
	v.SetDefault("connection.port", conn.Port)
	v.SetDefault("connection.database", conn.Database)
	v.SetDefault("connection.username", conn.Username)
	v.SetDefault("connection.password", conn.Password)
	v.SetDefault("connection.timeout", conn.Timeout)

	p := pool.DefaultConfig()
	v.SetDefault("pool.min_connections", p.MinConnections)
	v.SetDefault("pool.max_connections", p.MaxConnections)
	v.SetDefault("pool.idle_timeout", p.IdleTimeout)
	v.SetDefault("pool.acquire_timeout", p.AcquireTimeout)
	v.SetDefault("pool.validate_on_borrow", p.ValidateOnBorrow)

	v.SetDefault("migrations.dir", "migrations")
	v.SetDefault("migrations.table", "migrations")
	v.SetDefault("seeders.dir", "seeders")
	v.SetDefault("models.dir", "models")
	v.SetDefault("models.package", "models")
	v.SetDefault("debug", false)
}

// LoadEnv loads .env and then .env.local, which overrides it. Missing
// files are skipped.
func LoadEnv() error {
	if ok, _ := afero.Exists(AppFs, ".env"); ok {
		if err := godotenv.Load(); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	if ok, _ := afero.Exists(AppFs, ".env.local"); ok {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}
	return nil
}

// Load reads the config file (explicit path or the search paths) and
// decodes v. A missing config file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || file != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// ConnectionSettings returns the connection settings. A URL, when set, wins
// over the individual fields.
func (c *Config) ConnectionSettings() (connection.Config, error) {
	if c.URL != "" {
		cfg, err := connection.ConfigFromURL(c.URL)
		if err != nil {
			return cfg, err
		}
		cfg.Debug = c.Debug
		return cfg, nil
	}
	return connection.Config{
		Protocol: c.Connection.Protocol,
		Host:     c.Connection.Host,
		Port:     c.Connection.Port,
		Database: c.Connection.Database,
		Username: c.Connection.Username,
		Password: c.Connection.Password,
		Timeout:  c.Connection.Timeout,
		Debug:    c.Debug,
	}, nil
}

// PoolSettings returns the pool settings.
func (c *Config) PoolSettings() pool.Config {
	return pool.Config{
		MinConnections:   c.Pool.MinConnections,
		MaxConnections:   c.Pool.MaxConnections,
		IdleTimeout:      c.Pool.IdleTimeout,
		AcquireTimeout:   c.Pool.AcquireTimeout,
		ValidateOnBorrow: c.Pool.ValidateOnBorrow,
	}
}

// WriteDefault writes a config file with the defaults to path. It refuses
// to overwrite an existing file.
func WriteDefault(path string) error {
	if ok, _ := afero.Exists(AppFs, path); ok {
		return fmt.Errorf("%s already exists", path)
	}
	v := viper.New()
	v.SetFs(AppFs)
	setDefaults(v)
	v.SetConfigType("yaml")
	return v.WriteConfigAs(path)
}
