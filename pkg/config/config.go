package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MongoDB   MongoDBConfig   `mapstructure:"mongodb"`
	Etcd      EtcdConfig      `mapstructure:"etcd"`
	Admin     AdminConfig     `mapstructure:"admin"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Name            string        `mapstructure:"name"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func (c *ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

type DatabaseConfig struct {
	// Driver is one of mysql, postgres or sqlite.
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DataSource returns the explicit DSN when set, otherwise one assembled from the
// host fields for the configured driver.
func (c *DatabaseConfig) DataSource() string {
	if c.DSN != "" {
		return c.DSN
	}
	switch c.Driver {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	case "sqlite":
		return c.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.Username, c.Password, c.Host, c.Port, c.Database)
	}
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type MongoDBConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	URI        string `mapstructure:"uri"`
	Database   string `mapstructure:"database"`
	Collection string `mapstructure:"collection"`
}

type EtcdConfig struct {
	Endpoints   []string      `mapstructure:"endpoints"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
	Prefix      string        `mapstructure:"prefix"`
	LeaseTTL    int64         `mapstructure:"lease_ttl"`
}

type AdminConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Host          string        `mapstructure:"host"`
	Port          int           `mapstructure:"port"`
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

func (c *AdminConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	RateLimit     int64         `mapstructure:"rate_limit"`
	RateLimitSpan time.Duration `mapstructure:"rate_limit_span"`
}

type AnalyticsConfig struct {
	Timezone string        `mapstructure:"timezone"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// Location resolves Timezone, falling back to UTC when it is empty.
func (c *AnalyticsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid analytics timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

type LogConfig struct {
	Level       string   `mapstructure:"level"`
	Encoding    string   `mapstructure:"encoding"`
	OutputPaths []string `mapstructure:"output_paths"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.name", "possales")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "")
	v.SetDefault("database.database", "possales")
	v.SetDefault("database.host", "127.0.0.1")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("mongodb.enabled", false)
	v.SetDefault("mongodb.uri", "mongodb://127.0.0.1:27017")
	v.SetDefault("mongodb.database", "possales")
	v.SetDefault("mongodb.collection", "audit_logs")

	v.SetDefault("etcd.endpoints", []string{})
	v.SetDefault("etcd.dial_timeout", 5*time.Second)
	v.SetDefault("etcd.prefix", "/services/")
	v.SetDefault("etcd.lease_ttl", 30)

	v.SetDefault("admin.enabled", false)
	v.SetDefault("admin.host", "0.0.0.0")
	v.SetDefault("admin.port", 9090)
	v.SetDefault("admin.check_interval", 15*time.Second)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.rate_limit", 5)
	v.SetDefault("auth.rate_limit_span", time.Minute)

	v.SetDefault("analytics.timezone", "UTC")
	v.SetDefault("analytics.cache_ttl", time.Minute)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "json")
	v.SetDefault("log.output_paths", []string{"stdout"})
}

// Load reads the YAML file at configPath. An empty path loads defaults and
// environment only. Every key can be overridden with a POS_ variable, e.g.
// POS_DATABASE_DSN or POS_AUTH_JWT_SECRET.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("pos")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret must be set")
	}
	if _, err := c.Analytics.Location(); err != nil {
		return err
	}
	return nil
}
