package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	App struct {
		Env string
	} `mapstructure:"app"`

	Store struct {
		Driver string
	} `mapstructure:"store"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	SQLite struct {
		Path string
	} `mapstructure:"sqlite"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Import struct {
		MatMLExtensions []string `mapstructure:"matml_extensions"`
	} `mapstructure:"import"`
}

// Load читает YAML-конфиг и переопределения из окружения (APP_POSTGRES_DSN и т.п.).
// Пустой path или отсутствующий файл не ошибка: остаются значения по умолчанию.
func Load(path string) (Config, error) {
	// .env необязателен
	_ = gotenv.Load()

	v := viper.New()
	v.SetDefault("app.env", "prod")
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("sqlite.path", "matbase.db")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("import.matml_extensions", []string{".xml", ".matml"})

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Config
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
			return c, err
		}
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func (c Config) validate() error {
	switch c.Store.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for postgres store")
		}
	case DriverSQLite:
		if c.SQLite.Path == "" {
			return errors.New("sqlite.path is required for sqlite store")
		}
	default:
		return errors.New("unknown store.driver: " + c.Store.Driver)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
