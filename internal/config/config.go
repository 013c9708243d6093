package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type PaymentConfig struct {
	Env        string `yaml:"env" env:"ENV" env-default:"local"`
	HTTPServer `yaml:"http_server"`
	PaymentDB  `yaml:"payment_db"`
	Redis      `yaml:"redis"`
	Kafka      `yaml:"kafka"`
	Wechat     `yaml:"wechat"`
	Alipay     `yaml:"alipay"`
	Sweeper    `yaml:"sweeper"`
	Gateway    `yaml:"gateway"`
}

type HTTPServer struct {
	Host string `yaml:"host" env-default:"0.0.0.0"`
	Port string `yaml:"port" env-default:"8080"`
}

type PaymentDB struct {
	Dsn            string `yaml:"dsn" env:"PAYMENT_DB_DSN"`
	MigrationsPath string `yaml:"migrations_path"`
}

type Redis struct {
	Addr     string `yaml:"addr" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

type Kafka struct {
	Host  string `yaml:"host"`
	Port  string `yaml:"port"`
	Topic string `yaml:"topic" env-default:"payment-events"`
}

type Wechat struct {
	AppID            string `yaml:"app_id" env:"WECHAT_APP_ID"`
	MchID            string `yaml:"mch_id" env:"WECHAT_MCH_ID"`
	SerialNo         string `yaml:"serial_no" env:"WECHAT_SERIAL_NO"`
	PrivateKeyPath   string `yaml:"private_key_path" env:"WECHAT_PRIVATE_KEY_PATH"`
	PlatformCertPath string `yaml:"platform_cert_path" env:"WECHAT_PLATFORM_CERT_PATH"`
	APIv3Key         string `yaml:"api_v3_key" env:"WECHAT_API_V3_KEY"`
	NotifyURL        string `yaml:"notify_url"`
	BaseURL          string `yaml:"base_url" env-default:"https://api.mch.weixin.qq.com"`
}

type Alipay struct {
	AppID          string `yaml:"app_id" env:"ALIPAY_APP_ID"`
	PrivateKeyPath string `yaml:"private_key_path" env:"ALIPAY_PRIVATE_KEY_PATH"`
	PublicKeyPath  string `yaml:"public_key_path" env:"ALIPAY_PUBLIC_KEY_PATH"`
	NotifyURL      string `yaml:"notify_url"`
	GatewayURL     string `yaml:"gateway_url" env-default:"https://openapi.alipay.com/gateway.do"`
}

type Sweeper struct {
	Interval   time.Duration `yaml:"interval" env-default:"30m"`
	MaxAge     time.Duration `yaml:"max_age" env-default:"30m"`
	BatchLimit int           `yaml:"batch_limit" env-default:"100"`
}

type Gateway struct {
	Timeout time.Duration `yaml:"timeout" env-default:"10s"`
}

func MustLoad() *PaymentConfig {

	// Processing env config variable and file
	configPath := os.Getenv("PAYMENT_CONFIG_PATH")

	if configPath == "" {
		log.Fatalf("PAYMENT_CONFIG_PATH was not found\n")
	}

	if _, err := os.Stat(configPath); err != nil {
		log.Fatalf("failed to find config file: %v\n", err)
	}

	// YAML to struct object
	var cfg PaymentConfig
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("failed to read config file: %v", err)
	}

	mustValidate(&cfg)

	return &cfg
}

// mustValidate fails fast on missing provider credentials: a service
// that cannot sign requests or verify callbacks must not start.
func mustValidate(cfg *PaymentConfig) {
	required := map[string]string{
		"payment_db.dsn":            cfg.PaymentDB.Dsn,
		"wechat.app_id":             cfg.Wechat.AppID,
		"wechat.mch_id":             cfg.Wechat.MchID,
		"wechat.serial_no":          cfg.Wechat.SerialNo,
		"wechat.private_key_path":   cfg.Wechat.PrivateKeyPath,
		"wechat.platform_cert_path": cfg.Wechat.PlatformCertPath,
		"wechat.api_v3_key":         cfg.Wechat.APIv3Key,
		"wechat.notify_url":         cfg.Wechat.NotifyURL,
		"alipay.app_id":             cfg.Alipay.AppID,
		"alipay.private_key_path":   cfg.Alipay.PrivateKeyPath,
		"alipay.public_key_path":    cfg.Alipay.PublicKeyPath,
		"alipay.notify_url":         cfg.Alipay.NotifyURL,
	}
	for name, value := range required {
		if value == "" {
			log.Fatalf("config: required value %s is missing", name)
		}
	}
	if len(cfg.Wechat.APIv3Key) != 32 {
		log.Fatalf("config: wechat.api_v3_key must be 32 bytes, got %d", len(cfg.Wechat.APIv3Key))
	}
}
