package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded, when present, before the process environment is read.
// Variables already set in the environment win over the file.
var envFile = ".env"

// parseEnv overlays Config with environment variables.
//
// Recognised variables:
//
//	HTTP_ADDR, GRPC_ADDR, ENVIRONMENT, DATABASE_DRIVER, DATABASE_URL,
//	SECRET_KEY, ACCESS_TOKEN_EXPIRE_MINUTES, RESET_TOKEN_EXPIRE_MINUTES,
//	BCRYPT_COST, GOOGLE_USERINFO_URL, MAIL_PROVIDER, SMTP_HOST, SMTP_PORT,
//	SMTP_USER, SMTP_PASSWORD, FROM_EMAIL, FROM_NAME, FRONTEND_URL,
//	ALLOWED_ORIGINS (comma separated).
//
// Malformed numeric values panic, matching the JSON and flag layers.
func parseEnv(config *Config) {
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			panic(err)
		}
	}

	envString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	envString(&config.EndpointAddrGRPC, "GRPC_ADDR")
	envString(&config.Environment, "ENVIRONMENT")
	envString(&config.DatabaseDriver, "DATABASE_DRIVER")
	envString(&config.DatabaseDSN, "DATABASE_URL")
	envString(&config.SecretKey, "SECRET_KEY")
	envMinutes(&config.AccessTokenValidityDuration, "ACCESS_TOKEN_EXPIRE_MINUTES")
	envMinutes(&config.ResetTokenValidityDuration, "RESET_TOKEN_EXPIRE_MINUTES")
	envInt(&config.BcryptCost, "BCRYPT_COST")
	envString(&config.GoogleUserinfoURL, "GOOGLE_USERINFO_URL")
	envString(&config.MailProvider, "MAIL_PROVIDER")
	envString(&config.SMTPHost, "SMTP_HOST")
	envInt(&config.SMTPPort, "SMTP_PORT")
	envString(&config.SMTPUser, "SMTP_USER")
	envString(&config.SMTPPassword, "SMTP_PASSWORD")
	envString(&config.FromEmail, "FROM_EMAIL")
	envString(&config.FromName, "FROM_NAME")
	envString(&config.FrontendURL, "FRONTEND_URL")

	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok && v != "" {
		config.AllowedOrigins = splitList(v)
	}
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		panic(err)
	}
	*dst = n
}

func envMinutes(dst *time.Duration, key string) {
	var n int
	envInt(&n, key)
	if n != 0 {
		*dst = time.Duration(n) * time.Minute
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
