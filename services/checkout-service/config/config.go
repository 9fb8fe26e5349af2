package config

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

const (
	StripeSecretName = "checkout/STRIPE_CREDENTIALS"
	DBSecretName     = "checkout/DB_CREDENTIALS"

	EventBusSNS   = "sns"
	EventBusKafka = "kafka"
	EventBusNone  = "none"
)

type Config struct {
	Port   string
	AppEnv string

	DBDriver         string
	SQLitePath       string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	StripeSecretKey  string
	StripeWebhookKey string

	JWTSecret      string
	RedisURL       string
	AllowedOrigins []string

	Currency   string
	SuccessURL string
	CancelURL  string

	EventBus              string
	OrderEventsTopicARN   string
	KafkaBrokers          []string
	KafkaOrderTopic       string
	PaymentEventsQueueURL string

	UseSecretsManager  bool
	MetricsEnabled     bool
	CloudWatchLogGroup string
}

// JSONSecretGetter is satisfied by pkg/aws.SecretsClient.
type JSONSecretGetter interface {
	GetJSONSecret(ctx context.Context, name string, out any) error
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:   getEnv("PORT", "8087"),
		AppEnv: getEnv("APP_ENV", "development"),

		DBDriver:         getEnv("DB_DRIVER", "postgres"),
		SQLitePath:       getEnv("SQLITE_PATH", "checkout.db"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		StripeSecretKey:  os.Getenv("STRIPE_API_KEY"),
		StripeWebhookKey: os.Getenv("STRIPE_WEBHOOK_SECRET"),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		RedisURL:       os.Getenv("REDIS_URL"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),

		Currency:   strings.ToLower(getEnv("CHECKOUT_CURRENCY", "usd")),
		SuccessURL: getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
		CancelURL:  getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),

		EventBus:              strings.ToLower(getEnv("EVENT_BUS", EventBusNone)),
		OrderEventsTopicARN:   os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		KafkaBrokers:          splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic:       getEnv("KAFKA_ORDER_TOPIC", "order-events"),
		PaymentEventsQueueURL: os.Getenv("PAYMENT_EVENTS_QUEUE_URL"),

		UseSecretsManager:  getBool("AWS_USE_SECRETS", false),
		MetricsEnabled:     getBool("METRICS_ENABLED", false),
		CloudWatchLogGroup: os.Getenv("CLOUDWATCH_LOG_GROUP"),
	}

	switch cfg.EventBus {
	case EventBusSNS, EventBusKafka, EventBusNone:
	default:
		return nil, fmt.Errorf("unknown EVENT_BUS %q", cfg.EventBus)
	}
	return cfg, nil
}

// ApplySecrets overrides credentials with the JSON secrets stored in Secrets Manager.
// Keys missing from a secret keep their environment value.
func (c *Config) ApplySecrets(ctx context.Context, secrets JSONSecretGetter) error {
	var stripeCreds struct {
		APIKey        string `json:"STRIPE_API_KEY"`
		WebhookSecret string `json:"STRIPE_WEBHOOK_SECRET"`
	}
	if err := secrets.GetJSONSecret(ctx, StripeSecretName, &stripeCreds); err != nil {
		return err
	}
	override(&c.StripeSecretKey, stripeCreds.APIKey)
	override(&c.StripeWebhookKey, stripeCreds.WebhookSecret)

	var dbCreds struct {
		User     string `json:"username"`
		Password string `json:"password"`
		Host     string `json:"host"`
		Port     any    `json:"port"`
		DBName   string `json:"dbname"`
	}
	if err := secrets.GetJSONSecret(ctx, DBSecretName, &dbCreds); err != nil {
		return err
	}
	override(&c.PostgresUser, dbCreds.User)
	override(&c.PostgresPassword, dbCreds.Password)
	override(&c.PostgresHost, dbCreds.Host)
	override(&c.PostgresDB, dbCreds.DBName)
	switch p := dbCreds.Port.(type) {
	case string:
		override(&c.PostgresPort, p)
	case float64:
		c.PostgresPort = strconv.Itoa(int(p))
	}
	return nil
}

// Validate reports the required settings that are still empty.
func (c *Config) Validate() error {
	var missing []string
	if c.DBDriver != "sqlite" {
		for name, v := range map[string]string{
			"POSTGRES_USER":     c.PostgresUser,
			"POSTGRES_PASSWORD": c.PostgresPassword,
			"POSTGRES_DB":       c.PostgresDB,
			"POSTGRES_HOST":     c.PostgresHost,
		} {
			if v == "" {
				missing = append(missing, name)
			}
		}
	}
	if c.StripeSecretKey == "" {
		missing = append(missing, "STRIPE_API_KEY")
	}
	if c.StripeWebhookKey == "" {
		missing = append(missing, "STRIPE_WEBHOOK_SECRET")
	}
	switch {
	case c.EventBus == EventBusSNS && c.OrderEventsTopicARN == "":
		missing = append(missing, "ORDER_EVENTS_TOPIC_ARN")
	case c.EventBus == EventBusKafka && len(c.KafkaBrokers) == 0:
		missing = append(missing, "KAFKA_BROKERS")
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
