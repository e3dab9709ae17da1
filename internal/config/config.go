package config

import (
	"flag"
	"github.com/ilyakaznacheev/cleanenv"
	"log"
	"os"
	"time"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	Database   Database   `yaml:"database"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Upload     Upload     `yaml:"upload"`
	Disk       Disk       `yaml:"disk"`
	Auth       Auth       `yaml:"auth"`
	RateLimit  RateLimit  `yaml:"rate_limit"`
	Kafka      Kafka      `yaml:"kafka"`
}

type Database struct {
	Driver   string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"DB_NAME" env-default:"gallery"`
	SSLMode  string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
}

type HTTPServer struct {
	Address         string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8082"`
	Timeout         time.Duration `yaml:"timeout" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env-default:"10s"`
}

// Upload holds the limits applied by the upload normalizer.
type Upload struct {
	MaxSizeKB         int64    `yaml:"max_size_kb" env:"UPLOAD_MAX_SIZE_KB" env-default:"2048"`
	AllowedExtensions []string `yaml:"allowed_extensions" env:"UPLOAD_ALLOWED_EXTENSIONS" env-default:"jpeg,png,jpg,gif"`
}

func (u Upload) MaxBytes() int64 {
	return u.MaxSizeKB * 1024
}

// Disk selects where uploaded files are written. Driver is "local" or "s3".
type Disk struct {
	Driver       string `yaml:"driver" env:"DISK_DRIVER" env-default:"local"`
	Root         string `yaml:"root" env:"DISK_ROOT" env-default:"./storage"`
	PublicPrefix string `yaml:"public_prefix" env:"DISK_PUBLIC_PREFIX" env-default:"/storage"`
	S3           S3     `yaml:"s3"`
}

type S3 struct {
	Endpoint        string `yaml:"endpoint" env:"S3_ENDPOINT" env-default:"localhost:9000"`
	AccessKeyID     string `yaml:"access_key_id" env:"S3_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"S3_SECRET_ACCESS_KEY"`
	Bucket          string `yaml:"bucket" env:"S3_BUCKET" env-default:"images"`
	UseSSL          bool   `yaml:"use_ssl" env:"S3_USE_SSL"`
	PublicURL       string `yaml:"public_url" env:"S3_PUBLIC_URL"`
}

type Auth struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET" env-required:"true"`
}

// RateLimit configures the token bucket in front of write endpoints.
// A zero Rate disables limiting.
type RateLimit struct {
	Rate     float64 `yaml:"rate" env:"RATE_LIMIT_RATE"`
	Capacity int64   `yaml:"capacity" env:"RATE_LIMIT_CAPACITY" env-default:"10"`
}

// Kafka is optional; with no brokers change events are not published.
type Kafka struct {
	Brokers []string `yaml:"brokers" env:"KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"KAFKA_TOPIC" env-default:"gallery.images"`
}

func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("config path is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}

func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, err
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// fetchConfigPath fetches config path from command line flag or environment variable.
// Priority: flag > env > default.
func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}

	return res
}
