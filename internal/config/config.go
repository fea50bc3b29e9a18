package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

var configLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	configLogger = l
}

// Config represents the complete configuration structure
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Editor   EditorConfig   `yaml:"editor"`
	Content  ContentConfig  `yaml:"content"`
	Storage  StorageConfig  `yaml:"storage"`
	Janitor  JanitorConfig  `yaml:"janitor"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" default:"info" env:"QUILL_LOG_LEVEL"`
	Format string `yaml:"format" default:"console" env:"QUILL_LOG_FORMAT"`
}

type SiteConfig struct {
	Name        string `yaml:"name" default:"Quill"`
	Description string `yaml:"description" default:"A modern full-stack blogging platform"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0" env:"QUILL_HOST"`
	Port            string        `yaml:"port" default:"12600" env:"QUILL_PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	AllowedOrigins  []string      `yaml:"allowed_origins" default:"*"`
}

func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" default:"sqlite3" env:"QUILL_DB_DRIVER"`
	DSN    string `yaml:"dsn" default:"./database.db" env:"QUILL_DB_DSN"`
}

type AuthConfig struct {
	SigningMethod string        `yaml:"signing_method" default:"HS256" env:"QUILL_AUTH_SIGNING_METHOD"`
	Secret        string        `yaml:"secret" default:"" env:"QUILL_JWT_SECRET"`
	PrivateKeyPEM string        `yaml:"private_key_pem" default:"" env:"QUILL_ED25519_PRIVKEY"`
	PublicKeyPEM  string        `yaml:"public_key_pem" default:"" env:"QUILL_ED25519_PUBKEY"`
	Issuer        string        `yaml:"issuer" default:"quill"`
	TokenTTL      time.Duration `yaml:"token_ttl" default:"168h" env:"QUILL_TOKEN_TTL"`
	BcryptCost    int           `yaml:"bcrypt_cost" default:"12"`
	LoginRate     float64       `yaml:"login_rate" default:"1"`
	LoginBurst    int           `yaml:"login_burst" default:"5"`
}

type EditorConfig struct {
	AutosaveDelay time.Duration `yaml:"autosave_delay" default:"2s" env:"QUILL_AUTOSAVE_DELAY"`
	UntitledTitle string        `yaml:"untitled_title" default:"Untitled Draft"`
}

type ContentConfig struct {
	PostsPerPage     int `yaml:"posts_per_page" default:"10"`
	MaxPageSize      int `yaml:"max_page_size" default:"100"`
	ExcerptLength    int `yaml:"excerpt_length" default:"150"`
	TitleMinLength   int `yaml:"title_min_length" default:"3"`
	TitleMaxLength   int `yaml:"title_max_length" default:"255"`
	ContentMinLength int `yaml:"content_min_length" default:"10"`
	ContentMaxLength int `yaml:"content_max_length" default:"50000"`
}

type StorageConfig struct {
	Archive ArchiveConfig `yaml:"archive"`
}

// ArchiveConfig controls the S3-compatible mirror of published posts.
type ArchiveConfig struct {
	Enabled         bool   `yaml:"enabled" default:"false" env:"QUILL_ARCHIVE_ENABLED"`
	Bucket          string `yaml:"bucket" default:"" env:"QUILL_ARCHIVE_BUCKET"`
	Prefix          string `yaml:"prefix" default:"posts/"`
	Endpoint        string `yaml:"endpoint" default:"" env:"QUILL_ARCHIVE_ENDPOINT"`
	Region          string `yaml:"region" default:"auto"`
	AccessKeyID     string `yaml:"access_key_id" default:"" env:"QUILL_ARCHIVE_ACCESS_KEY_ID"`
	AccessKeySecret string `yaml:"access_key_secret" default:"" env:"QUILL_ARCHIVE_ACCESS_KEY_SECRET"`
}

type JanitorConfig struct {
	Enabled  bool   `yaml:"enabled" default:"true"`
	Schedule string `yaml:"schedule" default:"@every 15m" env:"QUILL_JANITOR_SCHEDULE"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"/metrics"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// LoadConfig reads path (missing files fall back to defaults), then applies
// QUILL_* environment overrides.
func LoadConfig(path string) (*Config, error) {
	config := &Config{}

	// Apply default values first
	applyDefaults(config)

	data, err := os.ReadFile(path)
	if err != nil {
		configLogger.Info().Str("path", path).Msg("Config file not found, using defaults")
	} else if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := envdecode.Decode(config); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return config, nil
}

func ApplyDefaults(config interface{}) {
	applyDefaults(config)
}

var durationType = reflect.TypeOf(time.Duration(0))

func applyDefaults(config interface{}) {
	v := reflect.ValueOf(config)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return
	}

	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := v.Field(i)
		fieldType := t.Field(i)

		if !field.IsValid() || !field.CanSet() {
			continue
		}

		// Recursively apply defaults to nested structs
		if field.Kind() == reflect.Struct {
			applyDefaults(field.Addr().Interface())
			continue
		}

		defaultValue := fieldType.Tag.Get("default")
		if defaultValue == "" {
			continue
		}

		if field.Type() == durationType {
			if val, err := time.ParseDuration(defaultValue); err == nil {
				field.SetInt(int64(val))
			}
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(defaultValue)
		case reflect.Bool:
			if val, err := strconv.ParseBool(defaultValue); err == nil {
				field.SetBool(val)
			}
		case reflect.Int:
			if val, err := strconv.ParseInt(defaultValue, 10, 64); err == nil {
				field.SetInt(val)
			}
		case reflect.Float64:
			if val, err := strconv.ParseFloat(defaultValue, 64); err == nil {
				field.SetFloat(val)
			}
		case reflect.Slice:
			if field.Len() == 0 && field.Type().Elem().Kind() == reflect.String {
				parts := strings.Split(defaultValue, ",")
				slice := reflect.MakeSlice(field.Type(), len(parts), len(parts))
				for j, part := range parts {
					slice.Index(j).SetString(strings.TrimSpace(part))
				}
				field.Set(slice)
			}
		default:
			configLogger.Warn().
				Str("field_name", fieldType.Name).
				Str("field_type", field.Kind().String()).
				Msg("Unsupported field type for default value")
		}
	}
}
