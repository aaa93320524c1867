// Package config loads the service configuration from an optional file,
// the environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFileEnvName = "ECOM_CONFIG_FILE"
	envPrefix         = "ECOM"

	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type HTTP struct {
	Addr              string        `mapstructure:"addr"`
	Port              string        `mapstructure:"port"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

type Mongo struct {
	URI             string        `mapstructure:"uri"`
	Database        string        `mapstructure:"database"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	QueryTimeout    time.Duration `mapstructure:"query_timeout"`
	ConnectAttempts int           `mapstructure:"connect_attempts"`
}

type JWT struct {
	AccessSecret  string        `mapstructure:"access_secret"`
	RefreshSecret string        `mapstructure:"refresh_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
}

type Auth struct {
	ResetTokenTTL time.Duration `mapstructure:"reset_token_ttl"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
}

type CORS struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

type Storage struct {
	Driver string `mapstructure:"driver"`
}

type Checkout struct {
	ReserveStock bool `mapstructure:"reserve_stock"`
}

type SMTP struct {
	Addr     string `mapstructure:"addr"`
	Host     string `mapstructure:"host"`
	From     string `mapstructure:"from"`
	Password string `mapstructure:"password"`
}

type App struct {
	FrontendURL string `mapstructure:"frontend_url"`
}

type Config struct {
	HTTP     HTTP     `mapstructure:"http"`
	Mongo    Mongo    `mapstructure:"mongo"`
	JWT      JWT      `mapstructure:"jwt"`
	Auth     Auth     `mapstructure:"auth"`
	CORS     CORS     `mapstructure:"cors"`
	Log      Log      `mapstructure:"log"`
	Storage  Storage  `mapstructure:"storage"`
	Checkout Checkout `mapstructure:"checkout"`
	SMTP     SMTP     `mapstructure:"smtp"`
	App      App      `mapstructure:"app"`
}

// legacyEnv maps keys to the plain variable names deployments already use.
var legacyEnv = map[string]string{
	"http.port":          "PORT",
	"mongo.uri":          "MONGO_URI",
	"mongo.database":     "DB_NAME",
	"jwt.access_secret":  "JWT_SECRET",
	"jwt.refresh_secret": "JWT_REFRESH_SECRET",
	"app.frontend_url":   "FRONTEND_URL",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.port", "")
	v.SetDefault("http.read_header_timeout", 5*time.Second)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "")
	v.SetDefault("mongo.connect_timeout", 10*time.Second)
	v.SetDefault("mongo.query_timeout", 5*time.Second)
	v.SetDefault("mongo.connect_attempts", 5)

	v.SetDefault("jwt.access_secret", "")
	v.SetDefault("jwt.refresh_secret", "")
	v.SetDefault("jwt.access_ttl", 72*time.Hour)
	v.SetDefault("jwt.refresh_ttl", 168*time.Hour)

	v.SetDefault("auth.reset_token_ttl", 15*time.Minute)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("storage.driver", StorageMongo)
	v.SetDefault("checkout.reserve_stock", false)

	v.SetDefault("smtp.addr", "")
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.from", "")
	v.SetDefault("smtp.password", "")

	v.SetDefault("app.frontend_url", "http://localhost:3000")
}

// Load reads .env, then the config file named by --config or
// ECOM_CONFIG_FILE, then the environment. Later sources win.
func Load(args []string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range legacyEnv {
		if err := v.BindEnv(key, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	path, err := configFilepath(args)
	if err != nil {
		return Config{}, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if cfg.HTTP.Port != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(cfg.HTTP.Port, ":")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configFilepath(args []string) (string, error) {
	cmdLine := pflag.NewFlagSet("ecommerce-api", pflag.ContinueOnError)
	arg := cmdLine.String("config", "", "config file (yaml, json or toml)")
	if err := cmdLine.Parse(args); err != nil {
		return "", fmt.Errorf("parse flags: %w", err)
	}
	if env, ok := os.LookupEnv(configFileEnvName); ok && env != "" {
		return env, nil
	}
	return *arg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.JWT.AccessSecret == "" || c.JWT.RefreshSecret == "" {
		errs = append(errs, errors.New("jwt.access_secret and jwt.refresh_secret are required"))
	}
	switch c.Storage.Driver {
	case StorageMongo:
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			errs = append(errs, errors.New("mongo.uri and mongo.database are required"))
		}
	case StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("storage.driver must be %q or %q", StorageMongo, StorageMemory))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.SMTP.Addr != "" && c.SMTP.From == "" {
		errs = append(errs, errors.New("smtp.from is required when smtp.addr is set"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func (l Log) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// LogValue hides secrets when the config is logged.
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("http_addr", c.HTTP.Addr),
		slog.String("storage", c.Storage.Driver),
		slog.String("mongo_database", c.Mongo.Database),
		slog.Duration("access_ttl", c.JWT.AccessTTL),
		slog.Duration("refresh_ttl", c.JWT.RefreshTTL),
		slog.Any("cors_origins", c.CORS.AllowedOrigins),
		slog.String("log_level", c.Log.Level),
		slog.Bool("reserve_stock", c.Checkout.ReserveStock),
		slog.Bool("smtp", c.SMTP.Addr != ""),
	)
}
