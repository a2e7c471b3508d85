// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is read once at startup and passed to constructors explicitly.
type Config struct {
	Addr        string
	WebDir      string
	DatabaseURL string

	JWTSecret string
	TokenTTL  time.Duration

	UploadDir      string
	MaxUploadBytes int64
	S3             S3Config

	RedisAddr       string
	AuthRateLimit   int64
	AuthRateWindow  time.Duration
	KafkaBrokers    []string
	KafkaTopic      string
	OIDC            OIDCConfig
	OTLPEndpoint    string
	ServiceName     string
	TraceSampleRate float64
	CORSOrigin      string
}

// S3Config selects the S3 image store when Endpoint is set.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// OIDCConfig enables SSO login when Issuer is set.
type OIDCConfig struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	SuccessURL   string
}

// Enabled reports whether SSO is configured.
func (c OIDCConfig) Enabled() bool { return c.Issuer != "" }

// Load reads the environment. JWT_SECRET is required.
func Load() (Config, error) {
	var errs []error
	c := Config{
		Addr:        env("ADDR", ":8080"),
		WebDir:      env("WEB_DIR", "web"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		UploadDir:   env("UPLOAD_DIR", "uploads"),
		S3: S3Config{
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			Bucket:    env("S3_BUCKET", "blog-uploads"),
		},
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		KafkaTopic: env("KAFKA_TOPIC", "blog.events"),
		OIDC: OIDCConfig{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
			SuccessURL:   env("SSO_SUCCESS_URL", "/"),
		},
		OTLPEndpoint: os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:  env("OTEL_SERVICE_NAME", "blog"),
		CORSOrigin:   os.Getenv("CORS_ORIGIN"),
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}

	var err error
	if c.TokenTTL, err = durationEnv("TOKEN_TTL", 0); err != nil {
		errs = append(errs, err)
	}
	if c.MaxUploadBytes, err = intEnv("MAX_UPLOAD_BYTES", 5<<20); err != nil {
		errs = append(errs, err)
	}
	if c.S3.UseSSL, err = boolEnv("S3_USE_SSL", false); err != nil {
		errs = append(errs, err)
	}
	if c.AuthRateLimit, err = intEnv("AUTH_RATE_LIMIT", 20); err != nil {
		errs = append(errs, err)
	}
	if c.AuthRateWindow, err = durationEnv("AUTH_RATE_WINDOW", time.Minute); err != nil {
		errs = append(errs, err)
	}
	if c.TraceSampleRate, err = floatEnv("OTEL_TRACES_SAMPLER_ARG", 1); err != nil {
		errs = append(errs, err)
	} else if c.TraceSampleRate < 0 || c.TraceSampleRate > 1 {
		errs = append(errs, fmt.Errorf("OTEL_TRACES_SAMPLER_ARG: %v out of range [0,1]", c.TraceSampleRate))
	}
	for _, b := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		if b = strings.TrimSpace(b); b != "" {
			c.KafkaBrokers = append(c.KafkaBrokers, b)
		}
	}
	if c.OIDC.Enabled() && (c.OIDC.ClientID == "" || c.OIDC.RedirectURL == "") {
		errs = append(errs, errors.New("OIDC_CLIENT_ID and OIDC_REDIRECT_URL are required with OIDC_ISSUER"))
	}

	return c, errors.Join(errs...)
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s: invalid positive integer %q", key, v)
	}
	return n, nil
}

func floatEnv(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", key, v)
	}
	return f, nil
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
