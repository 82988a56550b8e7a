package config

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	PublicBaseURL   string
}

// Enabled reports whether enough is set to talk to the bucket.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.SecretAccessKey != "" && r.BucketName != ""
}

type Config struct {
	Port           string
	DBURL          string
	Store          string
	JWTSecret      string
	Environment    string
	FrontendOrigin string
	LogLevel       string
	SeedFile       string
	R2             R2Config
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// Origins splits FRONTEND_ORIGIN, which may hold a comma separated list.
func (c *Config) Origins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendOrigin, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, strings.TrimRight(o, "/"))
		}
	}
	return origins
}

// PrimaryOrigin is the frontend page party join links point to.
func (c *Config) PrimaryOrigin() string {
	if o := c.Origins(); len(o) > 0 {
		return o[0]
	}
	return ""
}

var defaults = map[string]any{
	"port":                 "8080",
	"db_url":               "",
	"store":                StorePostgres,
	"jwt_secret":           "",
	"env":                  "development",
	"frontend_origin":      "http://localhost:5173",
	"log_level":            "info",
	"seed_file":            "",
	"r2_account_id":        "",
	"r2_access_key_id":     "",
	"r2_secret_access_key": "",
	"r2_bucket_name":       "",
	"r2_region":            "auto",
	"r2_public_base_url":   "",
}

// LoadEnvFile loads ENV_FILE (default .env) into the process environment.
// A missing file is not an error.
func LoadEnvFile(log logrus.FieldLogger) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		log.WithField("file", envFile).Debug("no env file found")
		return
	}
	log.WithField("file", envFile).Info("loaded env file")
}

// NewViper returns a viper instance reading the process environment, with
// every known key defaulted.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	return v
}

// BindFlags registers the server flags on fs and binds them to v, so a set
// flag wins over the environment. Flag names are the keys with dashes.
func BindFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringP("port", "p", "8080", "port to listen on (env: PORT)")
	fs.String("store", StorePostgres, "persistence backend, postgres or memory (env: STORE)")
	fs.String("db-url", "", "postgres connection string (env: DB_URL)")
	fs.String("env", "development", "deployment environment (env: ENV)")
	fs.String("frontend-origin", "http://localhost:5173", "allowed frontend origins, comma separated (env: FRONTEND_ORIGIN)")
	fs.String("log-level", "info", "log level (env: LOG_LEVEL)")
	fs.String("seed-file", "", "challenge JSON to upsert at startup (env: SEED_FILE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
}

func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Port:           v.GetString("port"),
		DBURL:          v.GetString("db_url"),
		Store:          strings.ToLower(v.GetString("store")),
		JWTSecret:      v.GetString("jwt_secret"),
		Environment:    v.GetString("env"),
		FrontendOrigin: v.GetString("frontend_origin"),
		LogLevel:       v.GetString("log_level"),
		SeedFile:       v.GetString("seed_file"),
		R2: R2Config{
			AccountID:       v.GetString("r2_account_id"),
			AccessKeyID:     v.GetString("r2_access_key_id"),
			SecretAccessKey: v.GetString("r2_secret_access_key"),
			BucketName:      v.GetString("r2_bucket_name"),
			Region:          v.GetString("r2_region"),
			PublicBaseURL:   v.GetString("r2_public_base_url"),
		},
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	switch c.Store {
	case StorePostgres:
		if c.DBURL == "" {
			return fmt.Errorf("DB_URL is required when STORE=%s", StorePostgres)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want %s or %s)", c.Store, StorePostgres, StoreMemory)
	}
	if c.IsProduction() && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return nil
}

func (c *Config) CorsOptions() cors.Options {
	return cors.Options{
		AllowedOrigins:   c.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}
}
