package alert

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

const (
	EnvHost     = "EMAIL_HOST"
	EnvPort     = "EMAIL_PORT"
	EnvUser     = "EMAIL_USER"
	EnvPassword = "EMAIL_PASS"
	EnvTo       = "EMAIL_TO"

	DefaultHost = "smtp.gmail.com"
	DefaultPort = 587

	// DefaultEnvFile is merged into the environment before reading the settings.
	DefaultEnvFile = ".env"
)

// Config holds the mail relay settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	To       string
}

// Complete reports whether enough is configured to attempt delivery.
func (c Config) Complete() bool {
	return c.User != "" && c.Password != "" && c.To != ""
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// LoadEnvFiles merges the given dotenv files into the process environment.
// Missing files are ignored; variables already set are left untouched.
func LoadEnvFiles(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errors.Wrapf(err, "failed to stat %s", f)
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "failed to load %s", f)
		}
	}
	return nil
}

// ConfigFromEnv reads the settings through lookup.
// An unset EMAIL_TO defaults to EMAIL_USER; a set-but-empty one stays empty.
func ConfigFromEnv(lookup LookupFunc) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return v
		}
		return def
	}

	cfg := Config{
		Host:     get(EnvHost, DefaultHost),
		Port:     DefaultPort,
		User:     get(EnvUser, ""),
		Password: get(EnvPassword, ""),
	}
	cfg.To = get(EnvTo, cfg.User)

	if raw, ok := lookup(EnvPort); ok {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return cfg, errors.Wrapf(err, "environment variable %s should be an integer", EnvPort)
		}
		cfg.Port = port
	}

	return cfg, nil
}
