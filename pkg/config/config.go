package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Kedar-sonavani/Kalashree-Collection/pkg/utils"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"ENV" env-default:"local"`
	HTTP       HTTP       `yaml:"http"`
	Postgres   PG         `yaml:"postgres"`
	Redis      Redis      `yaml:"redis"`
	Kafka      Kafka      `yaml:"kafka"`
	Identity   Identity   `yaml:"identity"`
	Admin      Admin      `yaml:"admin"`
	CORS       CORS       `yaml:"cors"`
	Limiter    Limiter    `yaml:"limiter"`
	Cloudinary Cloudinary `yaml:"cloudinary"`
	Outbox     Outbox     `yaml:"outbox"`
	Logger     Logger     `yaml:"logger"`
	SMTP       SMTP       `yaml:"smtp"`
	API        API        `yaml:"api"`
}

type HTTP struct {
	Port         string        `yaml:"port" env:"PORT" env-default:":5000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
	BodyLimit    int           `yaml:"body_limit" env-default:"10485760"`
}

type PG struct {
	URL string `yaml:"url" env:"DB_URL"`
}

type Redis struct {
	Addr        string        `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	SettingsTTL time.Duration `yaml:"settings_ttl" env-default:"10m"`
}

type Kafka struct {
	Brokers    []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:"," env-default:"localhost:9092"`
	OrderTopic string   `yaml:"order_topic" env:"KAFKA_ORDER_TOPIC" env-default:"order_events"`
	GroupID    string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"notification-service"`
}

// Identity points at the external identity provider. When JWTSecret is set,
// tokens are verified locally instead of calling the provider.
type Identity struct {
	URL        string        `yaml:"url" env:"IDP_URL"`
	APIKey     string        `yaml:"api_key" env:"IDP_API_KEY"`
	JWTSecret  string        `yaml:"jwt_secret" env:"IDP_JWT_SECRET"`
	AdminEmail string        `yaml:"admin_email" env:"ADMIN_EMAIL" env-default:"admin@hankycorner.com"`
	Timeout    time.Duration `yaml:"timeout" env-default:"2s"`
}

type Admin struct {
	Secret string `yaml:"secret" env:"ADMIN_SECRET"`
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:","`
}

type Limiter struct {
	Max    int           `yaml:"max" env-default:"10"`
	Window time.Duration `yaml:"window" env-default:"1m"`
}

type Cloudinary struct {
	URL    string `yaml:"url" env:"CLOUDINARY_URL"`
	Folder string `yaml:"folder" env-default:"products"`
}

type Outbox struct {
	Interval  time.Duration `yaml:"interval" env-default:"500ms"`
	BatchSize int           `yaml:"batch_size" env-default:"50"`
}

type Logger struct {
	Level string `yaml:"level" env:"LOG_LEVEL" env-default:"info"`
}

type SMTP struct {
	Host     string `yaml:"host" env:"SMTP_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"1025"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"orders@kalashree.store"`
}

type API struct {
	BaseURL string `yaml:"base_url" env:"API_BASE_URL" env-default:"http://localhost:5000"`
}

func MustLoad() *Config {
	configPath := utils.ParseWithFallback("CONFIG_PATH", "./config/local.yaml")

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("error reading config: %v", err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %w", err)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	cfg.Kafka.Brokers = trimAll(cfg.Kafka.Brokers)

	return &cfg, nil
}

// LoadEnv builds the config from the environment alone, for tools that run
// without a config file.
func LoadEnv() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}

	cfg.CORS.AllowedOrigins = trimAll(cfg.CORS.AllowedOrigins)
	cfg.Kafka.Brokers = trimAll(cfg.Kafka.Brokers)

	return &cfg, nil
}

func (c *Config) IsProd() bool {
	return c.Env == "prod"
}

func trimAll(values []string) []string {
	res := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			res = append(res, v)
		}
	}

	return res
}
