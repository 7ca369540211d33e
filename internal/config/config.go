package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DevSessionSecret is the SESSION_SECRET used when none is configured.
const DevSessionSecret = "dev-session-secret-change-me"

// Config holds the process configuration. Every field maps to an environment
// variable of the same name as its mapstructure tag.
type Config struct {
	AppPort string `mapstructure:"APP_PORT" validate:"required"`

	DBDriver       string `mapstructure:"DB_DRIVER" validate:"oneof=postgres mysql sqlite memory"`
	DBHost         string `mapstructure:"DB_HOST"`
	DBPort         int    `mapstructure:"DB_PORT" validate:"gte=0,lte=65535"`
	DBUser         string `mapstructure:"DB_USER"`
	DBPassword     string `mapstructure:"DB_PASSWORD"`
	DBName         string `mapstructure:"DB_NAME"`
	DBSSLMode      string `mapstructure:"DB_SSLMODE"`
	DBPath         string `mapstructure:"DB_PATH"`
	DBMaxOpenConns int    `mapstructure:"DB_MAX_OPEN_CONNS" validate:"gte=1"`

	SessionStore  string        `mapstructure:"SESSION_STORE" validate:"oneof=jwt redis"`
	SessionSecret string        `mapstructure:"SESSION_SECRET" validate:"required_if=SessionStore jwt"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL" validate:"gt=0"`
	SessionCookie string        `mapstructure:"SESSION_COOKIE" validate:"required"`
	CookieSecure  bool          `mapstructure:"COOKIE_SECURE"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required_if=SessionStore redis"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB" validate:"gte=0"`

	RabbitMQURL string `mapstructure:"RABBITMQ_URL"`

	BcryptCost int `mapstructure:"BCRYPT_COST" validate:"gte=4,lte=31"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=text json"`
	LogFile   string `mapstructure:"LOG_FILE"`
}

// PostgresDSN builds the key/value connection string understood by the pgx driver.
func (c Config) PostgresDSN() string {
	parts := []string{
		fmt.Sprintf("host=%s", c.DBHost),
		fmt.Sprintf("port=%d", c.DBPort),
		fmt.Sprintf("user=%s", c.DBUser),
		fmt.Sprintf("dbname=%s", c.DBName),
		fmt.Sprintf("sslmode=%s", c.DBSSLMode),
	}
	if c.DBPassword != "" {
		parts = append(parts, fmt.Sprintf("password=%s", c.DBPassword))
	}
	return strings.Join(parts, " ")
}

// PostgresDSNMasked is PostgresDSN with the password hidden, for logs.
func (c Config) PostgresDSNMasked() string {
	masked := c
	if masked.DBPassword != "" {
		masked.DBPassword = "******"
	}
	return masked.PostgresDSN()
}

// MySQLDSN builds the DSN understood by go-sql-driver/mysql.
func (c Config) MySQLDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.DBUser
	mc.Passwd = c.DBPassword
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort))
	mc.DBName = c.DBName
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

// MySQLDSNMasked is MySQLDSN with the password hidden, for logs.
func (c Config) MySQLDSNMasked() string {
	masked := c
	if masked.DBPassword != "" {
		masked.DBPassword = "******"
	}
	return masked.MySQLDSN()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":3000")

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "127.0.0.1")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "jurnal")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_PATH", "jurnal.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)

	v.SetDefault("SESSION_STORE", "jwt")
	v.SetDefault("SESSION_SECRET", DevSessionSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE", "jurnal_session")
	v.SetDefault("COOKIE_SECURE", false)

	v.SetDefault("REDIS_ADDR", "127.0.0.1:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("RABBITMQ_URL", "")

	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOG_FILE", "")
}

// Load reads the configuration from defaults, the optional dotenv file at
// envFile and the process environment, in increasing order of precedence.
// A missing envFile is not an error.
func Load(envFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			v.SetConfigFile(envFile)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("failed to read %s: %w", envFile, err)
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to stat %s: %w", envFile, err)
		}
	}

	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the struct tags of cfg.
func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			msgs := make([]string, 0, len(validationErrors))
			for _, e := range validationErrors {
				msgs = append(msgs, fmt.Sprintf("field '%s' failed on the '%s' tag", e.Field(), e.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
