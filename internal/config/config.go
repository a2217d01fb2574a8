package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv      string
	ServiceName string
	ServerPort  int
	LogLevel    string

	DatabaseURL string

	JWTSecret []byte
	JWTTTL    time.Duration

	CORSOrigins        []string
	RateLimitPer15Min  int
	StrictListing      bool
	MaxImageBytes      int64
	AllowedEmailDomain string

	CloudinaryURL       string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	RedisURL        string
	RedisAddr       string
	RedisPassword   string
	ListingCacheTTL time.Duration

	KafkaBrokers      []string
	KafkaProductTopic string

	ESURL      string
	ESUser     string
	ESPassword string
	ESIndex    string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v. Using system environment variables", err)
	}

	origins := CSV(os.Getenv("CORS_ORIGINS"))
	if front := os.Getenv("FRONTEND_URL"); front != "" {
		origins = append(origins, front)
	}
	origins = append(origins, "http://localhost:3000", "http://localhost:3001", "http://localhost:5173")

	return Config{
		AppEnv:      EnvDefault("APP_ENV", "development"),
		ServiceName: EnvDefault("SERVICE_NAME", "mart-api"),
		ServerPort:  EnvIntDefault("SERVER_PORT", EnvIntDefault("PORT", 5000)),
		LogLevel:    EnvDefault("LOG_LEVEL", "info"),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),
		JWTTTL:    EnvDurationDefault("JWT_TTL", 7*24*time.Hour),

		CORSOrigins:        origins,
		RateLimitPer15Min:  EnvIntDefault("RATE_LIMIT_PER_15MIN", 100),
		StrictListing:      EnvBoolDefault("LISTING_STRICT_FILTERS", false),
		MaxImageBytes:      EnvInt64Default("MAX_IMAGE_BYTES", 5*1024*1024),
		AllowedEmailDomain: os.Getenv("ALLOWED_EMAIL_DOMAIN"),

		CloudinaryURL:       os.Getenv("CLOUDINARY_URL"),
		CloudinaryCloudName: os.Getenv("CLOUDINARY_CLOUD_NAME"),
		CloudinaryAPIKey:    os.Getenv("CLOUDINARY_API_KEY"),
		CloudinaryAPISecret: os.Getenv("CLOUDINARY_API_SECRET"),
		CloudinaryFolder:    EnvDefault("CLOUDINARY_FOLDER", "mart/products"),

		RedisURL:        os.Getenv("REDIS_URL"),
		RedisAddr:       os.Getenv("REDIS_ADDR"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		ListingCacheTTL: EnvDurationDefault("LISTING_CACHE_TTL", 5*time.Minute),

		KafkaBrokers:      CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaProductTopic: EnvDefault("KAFKA_PRODUCT_TOPIC", "product_events"),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),
		ESIndex:    EnvDefault("ES_INDEX", "products"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: EnvIntDefault("SMTP_PORT", 587),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		SMTPFrom: os.Getenv("SMTP_FROM"),
	}
}

func (c Config) IsProduction() bool  { return c.AppEnv == "production" }
func (c Config) IsDevelopment() bool { return c.AppEnv == "development" }

func (c Config) CloudinaryConfigured() bool {
	return c.CloudinaryURL != "" || (c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != "")
}

func (c Config) RedisConfigured() bool { return c.RedisURL != "" || c.RedisAddr != "" }
func (c Config) KafkaConfigured() bool { return len(c.KafkaBrokers) > 0 }
func (c Config) ESConfigured() bool    { return c.ESURL != "" }
func (c Config) SMTPConfigured() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}
