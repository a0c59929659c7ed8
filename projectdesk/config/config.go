package config

import (
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/krew-solutions/projectdesk/projectdesk/seedwork/infrastructure/repository"
	"github.com/krew-solutions/projectdesk/projectdesk/session/identitymap"
)

type Database struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode,omitempty"`
}

// DSN renders a PostgreSQL connection URL.
func (d Database) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.Username, d.Password),
		Host:   d.Host + ":" + d.Port,
		Path:   "/" + d.Database,
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {d.SSLMode}}.Encode()
	}
	return u.String()
}

type Pagination struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

type IdentityMap struct {
	Size      int    `yaml:"size"`
	Isolation string `yaml:"isolation"`
}

type Config struct {
	Database    Database    `yaml:"database"`
	Pagination  Pagination  `yaml:"pagination"`
	IdentityMap IdentityMap `yaml:"identity_map"`
	// EnumPolicy is "ignore" or "reject".
	EnumPolicy string `yaml:"enum_policy"`
	LogLevel   string `yaml:"log_level"`
}

func Default() Config {
	return Config{
		Database: Database{
			Username: "devel",
			Password: "devel",
			Host:     "localhost",
			Port:     "5432",
			Database: "devel_projectdesk",
		},
		Pagination: Pagination{
			DefaultSize: repository.DefaultPageSize,
			MaxSize:     repository.MaxPageSize,
		},
		IdentityMap: IdentityMap{
			Size:      100,
			Isolation: identitymap.Serializable.String(),
		},
		EnumPolicy: "ignore",
		LogLevel:   "info",
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then the environment.
func Load(path string) (Config, error) {
	c := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, errors.Wrap(err, "read config")
		}
		if err := yaml.Unmarshal(data, &c); err != nil {
			return c, errors.Wrapf(err, "parse config %s", path)
		}
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return c, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	for key, target := range map[string]*string{
		"DB_USERNAME":             &c.Database.Username,
		"DB_PASSWORD":             &c.Database.Password,
		"DB_HOST":                 &c.Database.Host,
		"DB_PORT":                 &c.Database.Port,
		"DB_DATABASE":             &c.Database.Database,
		"DB_SSLMODE":              &c.Database.SSLMode,
		"PROJECTDESK_ENUM_POLICY": &c.EnumPolicy,
		"PROJECTDESK_LOG_LEVEL":   &c.LogLevel,
	} {
		if value, ok := lookup(key); ok {
			*target = value
		}
	}
	for key, target := range map[string]*int{
		"PROJECTDESK_PAGE_SIZE":     &c.Pagination.DefaultSize,
		"PROJECTDESK_MAX_PAGE_SIZE": &c.Pagination.MaxSize,
	} {
		value, ok := lookup(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrapf(err, "%s", key)
		}
		*target = n
	}
	return nil
}

func (c Config) Validate() error {
	var result *multierror.Error
	if c.Pagination.DefaultSize <= 0 || c.Pagination.MaxSize <= 0 {
		result = multierror.Append(result, errors.New("page sizes must be positive"))
	} else if c.Pagination.DefaultSize > c.Pagination.MaxSize {
		result = multierror.Append(result, errors.New("default page size exceeds max page size"))
	}
	if c.IdentityMap.Size < 0 {
		result = multierror.Append(result, errors.New("identity map size must not be negative"))
	}
	if _, err := identitymap.ParseIsolationLevel(c.IdentityMap.Isolation); err != nil {
		result = multierror.Append(result, err)
	}
	switch strings.ToLower(c.EnumPolicy) {
	case "", "ignore", "reject":
	default:
		result = multierror.Append(result, errors.Errorf("unknown enum policy \"%s\"", c.EnumPolicy))
	}
	if _, err := c.Level(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, errors.Wrapf(err, "log level")
	}
	return level, nil
}

// Isolation returns the parsed identity map isolation level.
func (c Config) Isolation() identitymap.IsolationLevel {
	level, err := identitymap.ParseIsolationLevel(c.IdentityMap.Isolation)
	if err != nil {
		return identitymap.Serializable
	}
	return level
}

func (c Config) StoreOptions() []repository.Option {
	return []repository.Option{repository.WithPageSizes(c.Pagination.DefaultSize, c.Pagination.MaxSize)}
}
