package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HTTP       HTTPConfig
	GRPC       GRPCConfig
	MySQL      MySQLConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Activation ActivationConfig
	Password   PasswordConfig
	Mail       MailConfig
	Log        LogConfig
}

type HTTPConfig struct {
	Host         string `default:"0.0.0.0"`
	Port         string `default:"8080"`
	CookieSecure bool   `split_words:"true" default:"false"`
}

type GRPCConfig struct {
	Host string `default:"0.0.0.0"`
	Port string `default:"9090"`
}

type MySQLConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string `default:"127.0.0.1:6379"`
	Password string
	DB       int `default:"0"`
}

// JWTConfig holds the session token secrets. Access and refresh tokens are
// signed with distinct secrets so either one can be rotated on its own.
type JWTConfig struct {
	AccessSecret    string        `split_words:"true"`
	RefreshSecret   string        `split_words:"true"`
	AccessTokenTTL  time.Duration `split_words:"true" default:"15m"`
	RefreshTokenTTL time.Duration `split_words:"true" default:"168h"`
}

type ActivationConfig struct {
	Secret string
	TTL    time.Duration `default:"5m"`
}

type PasswordConfig struct {
	BcryptCost int `split_words:"true" default:"10"`
	Policy     PasswordPolicy
}

type PasswordPolicy struct {
	MinLength        int  `split_words:"true" default:"8"`
	RequireUppercase bool `split_words:"true" default:"false"`
	RequireLowercase bool `split_words:"true" default:"false"`
	RequireNumber    bool `split_words:"true" default:"false"`
	RequireSpecial   bool `split_words:"true" default:"false"`
}

// MailConfig configures outbound SMTP delivery. An empty host makes the
// worker log messages instead of sending them.
type MailConfig struct {
	Host        string
	Port        int `default:"587"`
	Username    string
	Password    string
	From        string `default:"no-reply@users.local"`
	Queue       string `default:"mail"`
	Concurrency int    `default:"2"`
}

type LogConfig struct {
	Level  string `default:"info"`
	Format string `default:"text"`
}

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

func (p PasswordPolicy) Validate(password string) error {
	if utf8.RuneCountInString(password) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters long", p.MinLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("password must be at most %d bytes long", MaxPasswordBytes)
	}

	var hasUpper, hasLower, hasNumber, hasSpecial bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasNumber = true
		case unicode.IsPunct(ch) || unicode.IsSymbol(ch):
			hasSpecial = true
		}
	}

	var missing []string
	if p.RequireUppercase && !hasUpper {
		missing = append(missing, "uppercase letter")
	}
	if p.RequireLowercase && !hasLower {
		missing = append(missing, "lowercase letter")
	}
	if p.RequireNumber && !hasNumber {
		missing = append(missing, "number")
	}
	if p.RequireSpecial && !hasSpecial {
		missing = append(missing, "special character")
	}

	if len(missing) > 0 {
		return fmt.Errorf("password must contain at least one: %s", strings.Join(missing, ", "))
	}

	return nil
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignores error if not found)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.MySQL.DSN == "" {
		return errors.New("MYSQL_DSN environment variable is required")
	}
	if c.JWT.AccessSecret == "" {
		return errors.New("JWT_ACCESS_SECRET environment variable is required")
	}
	if c.JWT.RefreshSecret == "" {
		return errors.New("JWT_REFRESH_SECRET environment variable is required")
	}
	if c.Activation.Secret == "" {
		return errors.New("ACTIVATION_SECRET environment variable is required")
	}
	if c.JWT.AccessSecret == c.JWT.RefreshSecret || c.JWT.AccessSecret == c.Activation.Secret || c.JWT.RefreshSecret == c.Activation.Secret {
		return errors.New("activation, access and refresh secrets must be distinct")
	}
	if c.JWT.AccessTokenTTL <= 0 || c.JWT.RefreshTokenTTL <= c.JWT.AccessTokenTTL {
		return errors.New("refresh token ttl must be greater than access token ttl")
	}

	return nil
}

// DSN returns the MySQL DSN with parseTime enabled so DATETIME columns scan
// into time.Time.
func (c *Config) DSN() string {
	parsed, err := mysql.ParseDSN(c.MySQL.DSN)
	if err != nil {
		return c.MySQL.DSN
	}
	parsed.ParseTime = true
	return parsed.FormatDSN()
}
