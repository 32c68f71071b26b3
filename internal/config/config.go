package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables
	S3BucketName   string

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string
	JWTSecret         string // HS256 fallback when no RSA key pair is configured
	JWTExpiry         time.Duration
	OTPTTL            time.Duration

	SMTPHost     string
	SMTPPort     string
	SMTPFrom     string
	SMTPUsername string
	SMTPPassword string

	SNSRegion     string
	OTPSMSEnabled bool

	AllowedOrigins   []string // CORS allowed origins
	TrustedProxies   []string // peers whose X-Forwarded-For is believed by the rate limiter
	MaxProductImages int
	EURToINRRate     float64

	LogLevel string
	LogFile  string // empty disables the rotating file sink
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	Users    string
	Products string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		AppPort:        v.GetString("APP_PORT"),
		AppEnv:         v.GetString("APP_ENV"),
		AWSRegion:      v.GetString("AWS_REGION"),
		AWSEndpointURL: v.GetString("AWS_ENDPOINT_URL"),
		AWSAccessKeyID: v.GetString("AWS_ACCESS_KEY_ID"),
		AWSSecretKey:   v.GetString("AWS_SECRET_ACCESS_KEY"),
		DynamoTables: DynamoTables{
			Users:    v.GetString("DYNAMO_TABLE_USERS"),
			Products: v.GetString("DYNAMO_TABLE_PRODUCTS"),
		},
		S3BucketName:      v.GetString("S3_BUCKET_NAME"),
		JWTPrivateKeyPath: v.GetString("JWT_PRIVATE_KEY_PATH"),
		JWTPublicKeyPath:  v.GetString("JWT_PUBLIC_KEY_PATH"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		JWTExpiry:         v.GetDuration("JWT_EXPIRY"),
		OTPTTL:            v.GetDuration("OTP_TTL"),
		SMTPHost:          v.GetString("SMTP_HOST"),
		SMTPPort:          v.GetString("SMTP_PORT"),
		SMTPFrom:          v.GetString("SMTP_FROM"),
		SMTPUsername:      v.GetString("SMTP_USERNAME"),
		SMTPPassword:      v.GetString("SMTP_PASSWORD"),
		SNSRegion:         v.GetString("SNS_REGION"),
		OTPSMSEnabled:     v.GetBool("OTP_SMS_ENABLED"),
		AllowedOrigins:    splitList(v.GetString("ALLOWED_ORIGINS")),
		TrustedProxies:    splitList(v.GetString("TRUSTED_PROXIES")),
		MaxProductImages:  v.GetInt("MAX_PRODUCT_IMAGES"),
		EURToINRRate:      v.GetFloat64("EUR_TO_INR_RATE"),
		LogLevel:          v.GetString("LOG_LEVEL"),
		LogFile:           v.GetString("LOG_FILE"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "5000")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT_URL", "")
	v.SetDefault("AWS_ACCESS_KEY_ID", "")
	v.SetDefault("AWS_SECRET_ACCESS_KEY", "")
	v.SetDefault("DYNAMO_TABLE_USERS", "users")
	v.SetDefault("DYNAMO_TABLE_PRODUCTS", "products")
	v.SetDefault("S3_BUCKET_NAME", "go-shop-uploads")
	v.SetDefault("JWT_PRIVATE_KEY_PATH", "./private_key.pem")
	v.SetDefault("JWT_PUBLIC_KEY_PATH", "./public_key.pem")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_EXPIRY", time.Hour)
	v.SetDefault("OTP_TTL", 10*time.Minute)
	v.SetDefault("SMTP_HOST", "localhost")
	v.SetDefault("SMTP_PORT", "1025")
	v.SetDefault("SMTP_FROM", "noreply@example.com")
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SNS_REGION", "us-east-1")
	v.SetDefault("OTP_SMS_ENABLED", false)
	v.SetDefault("ALLOWED_ORIGINS", "*")
	v.SetDefault("TRUSTED_PROXIES", "")
	v.SetDefault("MAX_PRODUCT_IMAGES", 5)
	v.SetDefault("EUR_TO_INR_RATE", 90.0)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
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
