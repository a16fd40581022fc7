package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// ServerEnv is the environment consumed by `screener serve`.
type ServerEnv struct {
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	Port        int    `envconfig:"PORT" default:"8080"`

	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpirationHours int    `envconfig:"JWT_EXPIRATION_HOURS" default:"24"`
	BcryptCost         int    `envconfig:"BCRYPT_COST" default:"12"`
	PasswordPepper     string `envconfig:"PASSWORD_PEPPER"`

	VocabularyFile       string `envconfig:"VOCABULARY_FILE"`
	MatchMode            string `envconfig:"MATCH_MODE" default:"substring"`
	ScreeningConcurrency int    `envconfig:"SCREENING_CONCURRENCY" default:"4"`
	MaxUploadBytes       int64  `envconfig:"MAX_UPLOAD_BYTES" default:"10485760"`

	LogJSON bool `envconfig:"LOG_JSON" default:"false"`
	Debug   bool `envconfig:"DEBUG" default:"false"`
}

// LoadServerEnv reads ServerEnv from the process environment and validates it.
func LoadServerEnv() (*ServerEnv, error) {
	var env ServerEnv
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := env.Config().Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// Config returns the screening settings of the environment as a Config.
func (e *ServerEnv) Config() *Config {
	return &Config{
		VocabularyFile: e.VocabularyFile,
		MatchMode:      e.MatchMode,
		Concurrency:    e.ScreeningConcurrency,
		MaxUploadBytes: e.MaxUploadBytes,
		DatabaseURL:    e.DatabaseURL,
		Port:           e.Port,
		LogJSON:        e.LogJSON,
		Debug:          e.Debug,
	}
}

// JWT returns the token configuration.
func (e *ServerEnv) JWT() (*JWTConfig, error) {
	return NewJWTConfig(e.JWTSecret, e.JWTExpirationHours)
}

// Password returns the password hashing configuration.
func (e *ServerEnv) Password() (*PasswordConfig, error) {
	return NewPasswordConfig(e.BcryptCost, e.PasswordPepper)
}
