// Package config handles configuration for the account server, including
// defaults, a JSON overlay, environment variables and command-line flags.
package config

import "time"

// Config holds runtime settings for the account server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the public REST API.
//   - EndpointAddrGRPC: bind address for the gRPC health endpoint.
//   - Environment: "development" switches logs to text at debug level.
//   - DatabaseDriver / DatabaseDSN: "pgx" (PostgreSQL) or "sqlite" and its DSN.
//   - SecretKey: HMAC secret for signing session JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration: session token lifetime.
//   - ResetTokenValidityDuration: lifetime of password/PIN reset tokens and codes.
//   - BcryptCost: work factor for password and PIN digests.
//   - GoogleUserinfoURL / GoogleTimeout: Google identity verification endpoint.
//   - MailProvider: "smtp" delivers mail, "log" only records it.
//   - SMTPHost / SMTPPort / SMTPUser / SMTPPassword: outbound mail relay.
//   - FromEmail / FromName: sender of outbound mail.
//   - FrontendURL: base URL used in links inside emails.
//   - AllowedOrigins: CORS origins allowed to call the REST API.
//   - AppName / AppVersion: reported by the health endpoints.
type Config struct {
	EndpointAddrHTTP            string
	EndpointAddrGRPC            string
	Environment                 string
	DatabaseDriver              string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	ResetTokenValidityDuration  time.Duration
	BcryptCost                  int
	GoogleUserinfoURL           string
	GoogleTimeout               time.Duration
	MailProvider                string
	SMTPHost                    string
	SMTPPort                    int
	SMTPUser                    string
	SMTPPassword                string
	FromEmail                   string
	FromName                    string
	FrontendURL                 string
	AllowedOrigins              []string
	AppName                     string
	AppVersion                  string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8000"
	c.EndpointAddrGRPC = ":50051"
	c.Environment = "development"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:childsafe.db?_pragma=foreign_keys(1)"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 30 * time.Minute
	c.ResetTokenValidityDuration = 1 * time.Hour
	c.BcryptCost = 12
	c.GoogleUserinfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"
	c.GoogleTimeout = 10 * time.Second
	c.MailProvider = "log"
	c.SMTPHost = "localhost"
	c.SMTPPort = 587
	c.FromEmail = "noreply@childsafe.app"
	c.FromName = "ChildSafe"
	c.FrontendURL = "http://localhost:3000"
	c.AllowedOrigins = []string{"http://localhost:3000", "http://localhost:8080"}
	c.AppName = "ChildSafe API"
	c.AppVersion = "1.0.0"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, then from the environment (and .env), and
// finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
