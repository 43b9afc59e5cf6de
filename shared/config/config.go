package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

const (
	BackendPostgres = "postgres"
	BackendSqlite   = "sqlite"
	BackendFs       = "fs"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Addr            string        `yaml:"addr" validate:"required"`
	LogLevel        string        `yaml:"log_level"`
	LogJSON         bool          `yaml:"log_json"`
	StoreBackend    string        `yaml:"store_backend" validate:"required,oneof=postgres sqlite"`
	CounterBackend  string        `yaml:"counter_backend" validate:"required,oneof=postgres sqlite fs"`
	SqlitePath      string        `yaml:"sqlite_path" validate:"required_if=StoreBackend sqlite,required_if=CounterBackend sqlite"`
	CounterDir      string        `yaml:"counter_dir" validate:"required_if=CounterBackend fs"`
	AutoMigrate     bool          `yaml:"auto_migrate"`
	ThreadIdRetries int           `yaml:"thread_id_retries" validate:"gte=1"`
	RequestTimeout  time.Duration `yaml:"request_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	Nats            Nats          `yaml:"nats"`
}

type Nats struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix" validate:"required_with=URL"`
}

type Pg struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Dbname   string `yaml:"dbname"`
}

type Private struct {
	Pg           Pg     `yaml:"pg"`
	TripcodeSalt string `yaml:"tripcode_salt"`
}

// UsesPostgres reports whether any configured backend needs the postgres connection.
func (c *Config) UsesPostgres() bool {
	return c.Public.StoreBackend == BackendPostgres || c.Public.CounterBackend == BackendPostgres
}

// UsesSqlite reports whether any configured backend needs the sqlite database.
func (c *Config) UsesSqlite() bool {
	return c.Public.StoreBackend == BackendSqlite || c.Public.CounterBackend == BackendSqlite
}

func defaults() Public {
	return Public{
		Addr:            ":8080",
		LogLevel:        "info",
		StoreBackend:    BackendPostgres,
		CounterBackend:  BackendPostgres,
		ThreadIdRetries: 5,
		RequestTimeout:  10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

func loadPath(configPath string, output interface{}) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file does not exist: %s", configPath)
		}
		return fmt.Errorf("can't read config file %s: %w", configPath, err)
	}
	if err = yaml.Unmarshal(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Validate checks the `validate` tags and the cross-field rules they cannot express.
func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(c.Public); err != nil {
		return fmt.Errorf("invalid public config: %w", err)
	}
	if c.UsesPostgres() && (c.Private.Pg.Host == "" || c.Private.Pg.Dbname == "") {
		return fmt.Errorf("invalid private config: pg host and dbname are required for the postgres backend")
	}
	return nil
}

// Load reads public.yaml and private.yaml from configFolder, applies defaults and validates.
func Load(configFolder string) (*Config, error) {
	public := defaults()
	if err := loadPath(path.Join(configFolder, "public.yaml"), &public); err != nil {
		return nil, err
	}

	var private Private
	if err := loadPath(path.Join(configFolder, "private.yaml"), &private); err != nil {
		return nil, err
	}

	cfg := &Config{Public: public, Private: private}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// MustLoad is Load that panics, for process startup.
func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err.Error())
	}
	return cfg
}
