package config

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port              string `envconfig:"PORT" default:"8080"`
	DatabaseURL       string `envconfig:"DATABASE_URL" required:"true"`
	MidtransServerKey string `envconfig:"MIDTRANS_SERVER_KEY" required:"true"`
	MidtransEnv       string `envconfig:"MIDTRANS_ENV" default:"sandbox"`
	JWTSecret         string `envconfig:"JWT_SECRET" default:"dev-secret-please-change"`
	KafkaBrokers      string `envconfig:"KAFKA_BROKERS" default:""`
	KafkaTopic        string `envconfig:"KAFKA_TOPIC" default:"order-events"`
	ResendAPIKey      string `envconfig:"RESEND_API_KEY" default:""`
	MailFrom          string `envconfig:"MAIL_FROM" default:"L'Essence <orders@lessence.shop>"`
	SuccessURL        string `envconfig:"CHECKOUT_SUCCESS_URL" default:"https://lessence.shop/checkout/success"`
	CancelURL         string `envconfig:"CHECKOUT_CANCEL_URL" default:"https://lessence.shop/checkout/cancel"`
	LogLevel          string `envconfig:"LOG_LEVEL" default:"info"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
