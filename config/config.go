package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Notifier NotifierConfig `yaml:"notifier"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address        string   `yaml:"address"`
	SwaggerDir     string   `yaml:"swagger_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	// URL takes precedence over the discrete fields when set.
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
	Migrate  bool   `yaml:"migrate"`
}

// Enabled reports whether a Postgres store is configured. Without one the
// service runs on the in-memory store.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != "" || d.Host != ""
}

func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	BookingEventsTopic string   `yaml:"booking_events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type BookingConfig struct {
	PaymentDelayMillis    int     `yaml:"payment_delay_ms"`
	PaymentDeclineRate    float64 `yaml:"payment_decline_rate"`
	TrackingURLBase       string  `yaml:"tracking_url_base"`
	SchedulesCacheSeconds int     `yaml:"schedules_cache_ttl_seconds"`
}

type NotifierConfig struct {
	TwilioAccountSID   string `yaml:"twilio_account_sid"`
	TwilioAuthToken    string `yaml:"twilio_auth_token"`
	TwilioFromPhone    string `yaml:"twilio_from_phone"`
	TwilioFromWhatsApp string `yaml:"twilio_from_whatsapp"`
	TwilioBaseURL      string `yaml:"twilio_base_url"`
}

type AuthConfig struct {
	JWTSecret      string `yaml:"jwt_secret"`
	TokenTTLMinute int    `yaml:"token_ttl_minutes"`
}

type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// LoadConfig reads the YAML file at path, applies environment overrides
// (a .env file in the working directory is loaded first when present) and
// fills defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case os.IsNotExist(err):
		// environment-only configuration
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTP.Address, "HTTP_ADDR")
	setString(&c.GRPC.Address, "GRPC_ADDR")
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Redis.Addr, "REDIS_ADDR")
	setString(&c.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Notifier.TwilioAccountSID, "TWILIO_ACCOUNT_SID")
	setString(&c.Notifier.TwilioAuthToken, "TWILIO_AUTH_TOKEN")
	setString(&c.Notifier.TwilioFromPhone, "TWILIO_FROM_PHONE")
	setString(&c.Notifier.TwilioFromWhatsApp, "TWILIO_FROM_WHATSAPP")
	setString(&c.Booking.TrackingURLBase, "TRACKING_URL_BASE")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v := os.Getenv("PAYMENT_DECLINE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse PAYMENT_DECLINE_RATE: %w", err)
		}
		c.Booking.PaymentDeclineRate = rate
	}
	if v := os.Getenv("PAYMENT_DELAY_MS"); v != "" {
		delay, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PAYMENT_DELAY_MS: %w", err)
		}
		c.Booking.PaymentDelayMillis = delay
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":5000"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":5001"
	}
	if c.Booking.PaymentDelayMillis == 0 {
		c.Booking.PaymentDelayMillis = 3000
	}
	if c.Booking.PaymentDeclineRate == 0 {
		c.Booking.PaymentDeclineRate = 0.05
	}
	if c.Booking.TrackingURLBase == "" {
		c.Booking.TrackingURLBase = "http://jbs-care.com/track"
	}
	if c.Booking.SchedulesCacheSeconds == 0 {
		c.Booking.SchedulesCacheSeconds = 30
	}
	if c.Kafka.BookingEventsTopic == "" {
		c.Kafka.BookingEventsTopic = "booking-events"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "busbooking-notifier"
	}
	if c.Auth.TokenTTLMinute == 0 {
		c.Auth.TokenTTLMinute = 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
