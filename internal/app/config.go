package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/yashpatel08/railsathi/internal/platform/envutil"
	"github.com/yashpatel08/railsathi/internal/platform/mailer"
)

type ServerConfig struct {
	Port           int
	LogMode        string
	AllowedOrigins []string
	MaxFormBytes   int64
}

type DatabaseConfig struct {
	URL          string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	AutoMigrate  bool
	MaxOpenConns int
}

type StorageConfig struct {
	Bucket        string
	ProjectID     string
	Mode          string
	EmulatorHost  string
	PublicBaseURL string
	CDNDomain     string
	Credentials   string
}

type MediaConfig struct {
	TempDir          string
	VideoBitrate     string
	VideoCodec       string
	JPEGQuality      int
	MaxImageEdge     int
	MaxParallel      int
	FFmpegPath       string
	TranscodeTimeout time.Duration
}

type MailConfig struct {
	Transport          mailer.Transport
	Server             string
	Port               int
	Username           string
	Password           string
	From               string
	FromName           string
	StartTLS           bool
	SSLTLS             bool
	SendGridAPIKey     string
	SendGridBaseURL    string
	SendGridMaxRetries int
}

type NotifyConfig struct {
	Queue         string
	TemplatePath  string
	Timezone      string
	Workers       int
	Timeout       time.Duration
	NoEmailPrefix string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	QueueKey string
}

type OtelConfig struct {
	Enabled     bool
	ServiceName string
	Environment string
	Endpoint    string
	Headers     string
	Insecure    bool
	SampleRatio float64
}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Media    MediaConfig
	Mail     MailConfig
	Notify   NotifyConfig
	Redis    RedisConfig
	Otel     OtelConfig
}

const (
	QueueMemory = "memory"
	QueueRedis  = "redis"
)

// LoadConfig reads, in order of precedence: the process environment, a .env
// file in the working directory, the YAML file named by
// RAILSATHI_CONFIG_FILE, then built-in defaults.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	fallback, err := loadYAMLSettings(strings.TrimSpace(os.Getenv("RAILSATHI_CONFIG_FILE")))
	if err != nil {
		return Config{}, err
	}
	return buildConfig(envutil.Source{Fallback: fallback})
}

// loadYAMLSettings reads a flat mapping of setting names to scalar values.
func loadYAMLSettings(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	out := make(map[string]string, len(doc))
	for k, v := range doc {
		switch val := v.(type) {
		case nil:
		case []interface{}:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			out[strings.ToUpper(k)] = strings.Join(parts, ",")
		case map[string]interface{}:
			return nil, fmt.Errorf("config file %s: key %q must be a scalar or list", path, k)
		default:
			out[strings.ToUpper(k)] = fmt.Sprint(val)
		}
	}
	return out, nil
}

func buildConfig(src envutil.Source) (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:           src.Int("PORT", 5002),
			LogMode:        src.String("LOG_MODE", "development"),
			AllowedOrigins: src.List("CORS_ALLOWED_ORIGINS", []string{"*"}),
			MaxFormBytes:   int64(src.Int("HTTP_MAX_MULTIPART_MB", 32)) << 20,
		},
		Database: DatabaseConfig{
			URL:          src.String("DATABASE_URL", ""),
			Host:         src.String("POSTGRES_HOST", "localhost"),
			Port:         src.Int("POSTGRES_PORT", 5432),
			User:         src.String("POSTGRES_USER", "postgres"),
			Password:     src.String("POSTGRES_PASSWORD", ""),
			Name:         src.String("POSTGRES_DB", "railsathi"),
			SSLMode:      src.String("POSTGRES_SSLMODE", "disable"),
			AutoMigrate:  src.Bool("DB_AUTO_MIGRATE", false),
			MaxOpenConns: src.Int("DB_MAX_OPEN_CONNS", 20),
		},
		Storage: StorageConfig{
			Bucket:        src.String("GCS_BUCKET_NAME", "sanchalak-media-bucket1"),
			ProjectID:     src.String("PROJECT_ID", ""),
			Mode:          src.String("OBJECT_STORAGE_MODE", ""),
			EmulatorHost:  src.String("STORAGE_EMULATOR_HOST", ""),
			PublicBaseURL: src.String("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
			CDNDomain:     src.String("MEDIA_CDN_DOMAIN", ""),
			Credentials:   src.String("GOOGLE_APPLICATION_CREDENTIALS_JSON", src.String("GOOGLE_APPLICATION_CREDENTIALS", "")),
		},
		Media: MediaConfig{
			TempDir:          src.String("MEDIA_TEMP_DIR", "/tmp/rail_sathi_temp"),
			VideoBitrate:     src.String("MEDIA_VIDEO_BITRATE", "5000k"),
			VideoCodec:       src.String("MEDIA_VIDEO_CODEC", "libx264"),
			JPEGQuality:      src.Int("MEDIA_JPEG_QUALITY", 75),
			MaxImageEdge:     src.Int("MEDIA_MAX_IMAGE_EDGE", 2048),
			MaxParallel:      src.Int("MEDIA_MAX_PARALLEL", 0),
			FFmpegPath:       src.String("FFMPEG_PATH", "ffmpeg"),
			TranscodeTimeout: src.Seconds("MEDIA_TRANSCODE_TIMEOUT_SECONDS", 600*time.Second),
		},
		Mail: MailConfig{
			Transport:          mailer.Transport(strings.ToLower(src.String("MAIL_TRANSPORT", ""))),
			Server:             src.String("MAIL_SERVER", "smtp.gmail.com"),
			Port:               src.Int("MAIL_PORT", 587),
			Username:           src.String("MAIL_USERNAME", ""),
			Password:           src.String("MAIL_PASSWORD", ""),
			From:               src.String("MAIL_FROM", ""),
			FromName:           src.String("MAIL_FROM_NAME", "RailSathi"),
			StartTLS:           src.Bool("MAIL_STARTTLS", true),
			SSLTLS:             src.Bool("MAIL_SSL_TLS", false),
			SendGridAPIKey:     src.String("SENDGRID_API_KEY", ""),
			SendGridBaseURL:    src.String("SENDGRID_BASE_URL", ""),
			SendGridMaxRetries: src.Int("SENDGRID_MAX_RETRIES", 2),
		},
		Notify: NotifyConfig{
			Queue:         strings.ToLower(src.String("NOTIFY_QUEUE", QueueMemory)),
			TemplatePath:  src.String("NOTIFY_TEMPLATE_PATH", "templates/complaint_creation_email_template.txt"),
			Timezone:      src.String("NOTIFY_TIMEZONE", "Asia/Kolkata"),
			Workers:       src.Int("NOTIFY_WORKERS", 4),
			Timeout:       src.Seconds("NOTIFY_TIMEOUT_SECONDS", 120*time.Second),
			NoEmailPrefix: src.String("NOTIFY_NOEMAIL_PREFIX", "noemail"),
		},
		Redis: RedisConfig{
			Addr:     src.String("REDIS_ADDR", ""),
			Password: src.String("REDIS_PASSWORD", ""),
			DB:       src.Int("REDIS_DB", 0),
			QueueKey: src.String("REDIS_NOTIFY_QUEUE_KEY", "railsathi:notify:complaints"),
		},
		Otel: OtelConfig{
			Enabled:     src.Bool("OTEL_ENABLED", false),
			ServiceName: src.String("OTEL_SERVICE_NAME", "railsathi"),
			Environment: src.String("OTEL_ENVIRONMENT", src.String("LOG_MODE", "development")),
			Endpoint:    src.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     src.String("OTEL_EXPORTER_OTLP_HEADERS", ""),
			Insecure:    src.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: src.Float("OTEL_SAMPLER_RATIO", 1),
		},
	}
	if cfg.Mail.Transport == "" {
		cfg.Mail.Transport = inferMailTransport(cfg.Mail)
	}
	return cfg, cfg.validate()
}

// inferMailTransport picks SendGrid when an API key is present, SMTP when
// credentials are present, and the log transport otherwise.
func inferMailTransport(m MailConfig) mailer.Transport {
	switch {
	case m.SendGridAPIKey != "":
		return mailer.TransportSendGrid
	case m.Username != "" && m.Password != "":
		return mailer.TransportSMTP
	default:
		return mailer.TransportLog
	}
}

func (c Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Server.Port)
	}
	switch c.Mail.Transport {
	case mailer.TransportSMTP, mailer.TransportSendGrid, mailer.TransportLog:
	default:
		return fmt.Errorf("unsupported MAIL_TRANSPORT %q", c.Mail.Transport)
	}
	switch c.Notify.Queue {
	case QueueMemory:
	case QueueRedis:
		if c.Redis.Addr == "" {
			return errors.New("NOTIFY_QUEUE=redis requires REDIS_ADDR")
		}
	default:
		return fmt.Errorf("unsupported NOTIFY_QUEUE %q", c.Notify.Queue)
	}
	if _, err := time.LoadLocation(c.Notify.Timezone); err != nil {
		return fmt.Errorf("invalid NOTIFY_TIMEZONE %q: %w", c.Notify.Timezone, err)
	}
	return nil
}

// Location is the notify timezone. validate has already checked it loads.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Notify.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
