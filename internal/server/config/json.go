package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/expensio/expensio/internal/flagx"
	"github.com/expensio/expensio/internal/timex"
)

// JsonConfig mirrors Config for JSON unmarshalling. Interval fields use
// timex.Duration, which accepts both string values such as "30m" and integer
// nanoseconds. After unmarshalling, values are copied into the runtime
// Config.
type JsonConfig struct {
	EndpointAddrHTTP            string         `json:"endpoint_addr_http"`
	DatabaseDSN                 string         `json:"database_dsn"`
	SecretKey                   string         `json:"secret_key"`
	DevTokenValidityDuration    timex.Duration `json:"dev_token_validity_duration"`
	GoogleTokenValidityDuration timex.Duration `json:"google_token_validity_duration"`
	GoogleClientID              string         `json:"google_client_id"`
	GoogleClientSecret          string         `json:"google_client_secret"`
	GoogleRedirectURI           string         `json:"google_redirect_uri"`
	GoogleExchangeTimeout       timex.Duration `json:"google_exchange_timeout"`
	DesktopRedirectURL          string         `json:"desktop_redirect_url"`
}

// parseJson loads configuration from the JSON file named by the -c/-config
// flags, when present. Empty JSON fields leave the current values alone.
func parseJson(config *Config) error {

	jsonConfigFile := flagx.ConfigFileFlag()

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("config file: %w", err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.DevTokenValidityDuration.Duration != 0 {
		config.DevTokenValidityDuration = time.Duration(c.DevTokenValidityDuration.Duration)
	}
	if c.GoogleTokenValidityDuration.Duration != 0 {
		config.GoogleTokenValidityDuration = time.Duration(c.GoogleTokenValidityDuration.Duration)
	}
	if c.GoogleClientID != "" {
		config.GoogleClientID = c.GoogleClientID
	}
	if c.GoogleClientSecret != "" {
		config.GoogleClientSecret = c.GoogleClientSecret
	}
	if c.GoogleRedirectURI != "" {
		config.GoogleRedirectURI = c.GoogleRedirectURI
	}
	if c.GoogleExchangeTimeout.Duration != 0 {
		config.GoogleExchangeTimeout = time.Duration(c.GoogleExchangeTimeout.Duration)
	}
	if c.DesktopRedirectURL != "" {
		config.DesktopRedirectURL = c.DesktopRedirectURL
	}

	return nil
}
