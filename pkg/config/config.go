package config

import (
	"time"

	"github.com/joho/godotenv"
)

// Config holds the runtime configuration for the kms-secrets CLI.
type Config struct {
	ServiceName string
	Env         string
	LogLevel    string
	AWSRegion   string

	// EnvPrefix selects the environment variables holding ciphertexts.
	EnvPrefix string
	// BundleID names an optional Secrets Manager secret holding a
	// {namespace: ciphertext} JSON map.
	BundleID string
	// JSONNamespaces are parsed as JSON after decryption.
	JSONNamespaces []string

	KMSKeyID    string
	InitTimeout time.Duration

	// EncryptionContext is sent with every Decrypt call and must match the
	// context the ciphertexts were encrypted under.
	EncryptionContext map[string]string

	// Reveal prints plaintext values instead of masked ones.
	Reveal bool

	// DecryptRPS caps KMS Decrypt calls per second; 0 disables the cap.
	DecryptRPS   float64
	DecryptBurst int
}

// Load loads configuration from environment variables and optional .env file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServiceName:    GetEnv("SERVICE_NAME", "kms-secrets"),
		Env:            GetEnv("ENV", "dev"),
		LogLevel:       GetEnv("LOG_LEVEL", "info"),
		AWSRegion:      GetEnv("AWS_REGION", "us-east-2"),
		EnvPrefix:      GetEnv("KMS_SECRETS_PREFIX", "KMS_SECRET_"),
		BundleID:       GetEnv("KMS_SECRETS_BUNDLE", ""),
		JSONNamespaces: GetEnvList("KMS_SECRETS_JSON", nil),
		KMSKeyID:       GetEnv("KMS_KEY_ID", ""),
		InitTimeout:    GetEnvDuration("KMS_SECRETS_INIT_TIMEOUT", 0),
		DecryptRPS:     GetEnvFloat("KMS_SECRETS_DECRYPT_RPS", 0),
		DecryptBurst:   GetEnvInt("KMS_SECRETS_DECRYPT_BURST", 10),

		EncryptionContext: GetEnvMap("KMS_SECRETS_ENCRYPTION_CONTEXT", nil),
		Reveal:            GetEnvBool("KMS_SECRETS_REVEAL", false),
	}
}
