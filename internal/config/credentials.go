package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// PortalCredentials are the staff-portal login credentials. They come from
// the environment rather than the config file so they never end up in a
// committed YAML.
type PortalCredentials struct {
	Email    string `env:"PORTAL_EMAIL,required,notEmpty"`
	Password string `env:"PORTAL_PASSWORD,required,notEmpty"`
}

// LoadCredentials reads portal credentials from the environment, loading a
// local .env file first when one exists.
func LoadCredentials() (PortalCredentials, error) {
	// Missing .env is fine; the variables may be set directly.
	_ = godotenv.Load()

	var creds PortalCredentials
	if err := env.Parse(&creds); err != nil {
		return PortalCredentials{}, fmt.Errorf("failed to load portal credentials: %w", err)
	}
	return creds, nil
}
