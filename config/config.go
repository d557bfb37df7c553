package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	aws_pkg "github.com/yashrajoria/storefront-service/pkg/aws"
)

const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendDynamoDB = "dynamodb"

	SessionJWT    = "jwt"
	SessionHeader = "header"

	EventsNone  = "none"
	EventsSNS   = "sns"
	EventsKafka = "kafka"

	dbCredentialsSecret = "storefront/DB_CREDENTIALS"
	jwtSecretName       = "storefront/JWT_SECRET"
)

// Config holds all environment variables for the storefront service.
type Config struct {
	Port   string
	AppEnv string

	MongoURI string
	MongoDB  string

	StoreBackend  string // accounts: mongo | memory
	OrderStore    string // mongo | postgres
	CatalogStore  string // mongo | dynamodb
	ProductsTable string

	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	// Empty disables Redis: in-process locks and no product cache.
	RedisURL        string
	ProductCacheTTL time.Duration
	LockTTL         time.Duration
	LockWait        time.Duration

	SessionMode string
	JWTSecret   string
	TokenTTL    time.Duration

	EventsBackend       string
	OrderEventsTopicARN string
	KafkaBrokers        []string
	KafkaOrderTopic     string

	// Empty keeps reconciliation jobs in memory.
	ReconcileQueueURL        string
	ReconcileInterval        time.Duration
	CheckoutFinalizeAttempts int

	UseSecrets            bool
	CloudWatchEnabled     bool
	CloudWatchNamespace   string
	CloudWatchLogsEnabled bool
	CloudWatchLogGroup    string

	AllowedOrigins     string
	RateLimitPerMinute int
	RateLimitBurst     int
	RequestTimeout     time.Duration
}

// SecretSource reads secrets. *aws_pkg.SecretsClient satisfies it.
type SecretSource interface {
	GetSecret(ctx context.Context, name string) (string, error)
	GetSecretMap(ctx context.Context, name string) (map[string]string, error)
}

// Load reads configuration from the environment (and a .env file when
// present). With AWS_USE_SECRETS=true, Secrets Manager values override the
// database credentials and the JWT secret.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if cfg.UseSecrets {
		awsCfg, err := aws_pkg.LoadAWSConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config for secrets: %w", err)
		}
		cfg.ApplySecrets(ctx, aws_pkg.NewSecretsClient(awsCfg))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv parses the environment without validating.
func FromEnv() (*Config, error) {
	p := &parser{}
	cfg := &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "development"),

		MongoURI: os.Getenv("MONGO_URI"),
		MongoDB:  getEnv("MONGO_DB", "storefront"),

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", BackendMongo)),
		OrderStore:    strings.ToLower(getEnv("ORDER_STORE", BackendMongo)),
		CatalogStore:  strings.ToLower(getEnv("CATALOG_STORE", BackendMongo)),
		ProductsTable: getEnv("DYNAMODB_PRODUCTS_TABLE", "storefront-products"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),

		RedisURL:        os.Getenv("REDIS_URL"),
		ProductCacheTTL: p.duration("PRODUCT_CACHE_TTL", 5*time.Minute),
		LockTTL:         p.duration("LOCK_TTL", 10*time.Second),
		LockWait:        p.duration("LOCK_WAIT", 3*time.Second),

		SessionMode: strings.ToLower(getEnv("SESSION_MODE", SessionJWT)),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		TokenTTL:    p.duration("TOKEN_TTL", 24*time.Hour),

		EventsBackend:       strings.ToLower(getEnv("EVENTS_BACKEND", EventsNone)),
		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaOrderTopic:     getEnv("KAFKA_ORDER_TOPIC", "order.created"),

		ReconcileQueueURL:        os.Getenv("RECONCILE_QUEUE_URL"),
		ReconcileInterval:        p.duration("RECONCILE_INTERVAL", 15*time.Second),
		CheckoutFinalizeAttempts: p.integer("CHECKOUT_FINALIZE_ATTEMPTS", 3),

		UseSecrets:            p.boolean("AWS_USE_SECRETS", false),
		CloudWatchEnabled:     p.boolean("CLOUDWATCH_ENABLED", false),
		CloudWatchNamespace:   getEnv("CLOUDWATCH_NAMESPACE", "Storefront"),
		CloudWatchLogsEnabled: p.boolean("CLOUDWATCH_LOGS_ENABLED", false),
		CloudWatchLogGroup:    getEnv("CLOUDWATCH_LOG_GROUP", "/storefront/services"),

		AllowedOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		RateLimitPerMinute: p.integer("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:     p.integer("RATE_LIMIT_BURST", 50),
		RequestTimeout:     p.duration("REQUEST_TIMEOUT", 30*time.Second),
	}
	if p.err != nil {
		return nil, p.err
	}
	return cfg, nil
}

// ApplySecrets overrides credentials from sm. Missing secrets keep the
// environment values.
func (c *Config) ApplySecrets(ctx context.Context, sm SecretSource) {
	if m, err := sm.GetSecretMap(ctx, dbCredentialsSecret); err == nil {
		override := func(dst *string, key string) {
			if v, ok := m[key]; ok && v != "" {
				*dst = v
			}
		}
		override(&c.MongoURI, "MONGO_URI")
		override(&c.PostgresUser, "POSTGRES_USER")
		override(&c.PostgresPassword, "POSTGRES_PASSWORD")
		override(&c.PostgresDB, "POSTGRES_DB")
		override(&c.PostgresHost, "POSTGRES_HOST")
		override(&c.PostgresPort, "POSTGRES_PORT")
	}
	if jwt, err := sm.GetSecret(ctx, jwtSecretName); err == nil && jwt != "" {
		c.JWTSecret = jwt
	}
}

func (c *Config) usesMongo() bool {
	return c.StoreBackend == BackendMongo || c.OrderStore == BackendMongo || c.CatalogStore == BackendMongo
}

// Validate checks backend names and the settings each backend requires.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMongo, BackendMemory:
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.StoreBackend == BackendMemory {
		// In-memory accounts run with in-memory orders and catalog.
		c.OrderStore, c.CatalogStore = BackendMemory, BackendMemory
	} else {
		switch c.OrderStore {
		case BackendMongo, BackendPostgres:
		default:
			return fmt.Errorf("unknown ORDER_STORE %q", c.OrderStore)
		}
		switch c.CatalogStore {
		case BackendMongo, BackendDynamoDB:
		default:
			return fmt.Errorf("unknown CATALOG_STORE %q", c.CatalogStore)
		}
	}

	if c.usesMongo() && (c.MongoURI == "" || c.MongoDB == "") {
		return fmt.Errorf("mongo config incomplete")
	}
	if c.OrderStore == BackendPostgres &&
		(c.PostgresUser == "" || c.PostgresPassword == "" || c.PostgresDB == "" || c.PostgresHost == "") {
		return fmt.Errorf("postgres config incomplete")
	}

	switch c.SessionMode {
	case SessionJWT:
		if c.JWTSecret == "" {
			return fmt.Errorf("JWT_SECRET is required in jwt session mode")
		}
	case SessionHeader:
	default:
		return fmt.Errorf("unknown SESSION_MODE %q", c.SessionMode)
	}

	switch c.EventsBackend {
	case EventsNone:
	case EventsSNS:
		if c.OrderEventsTopicARN == "" {
			return fmt.Errorf("ORDER_EVENTS_TOPIC_ARN is required for sns events")
		}
	case EventsKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required for kafka events")
		}
	default:
		return fmt.Errorf("unknown EVENTS_BACKEND %q", c.EventsBackend)
	}

	if c.CheckoutFinalizeAttempts < 1 {
		return fmt.Errorf("CHECKOUT_FINALIZE_ATTEMPTS must be at least 1")
	}
	return nil
}

// PostgresDSN builds the connection string for the order store.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.PostgresHost, c.PostgresUser, c.PostgresPassword, c.PostgresDB,
		c.PostgresPort, c.PostgresSSLMode, c.PostgresTimeZone,
	)
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
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

// parser keeps the first typed parsing error.
type parser struct {
	err error
}

func (p *parser) fail(key, val string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", key, val, err)
	}
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		p.fail(key, val, err)
		return fallback
	}
	return d
}

func (p *parser) integer(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		p.fail(key, val, err)
		return fallback
	}
	return n
}

func (p *parser) boolean(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		p.fail(key, val, err)
		return fallback
	}
	return b
}
