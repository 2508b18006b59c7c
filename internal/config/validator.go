package config

import "fmt"

// Validate checks that loaded configuration values are usable before the
// application wires anything with them.
func (c *Config) Validate() error {
	if c.DBUser == "" || c.DBHost == "" || c.DBPort == "" || c.DBName == "" {
		return fmt.Errorf("incomplete database configuration (DB_USER, DB_HOST, DB_PORT, DB_NAME must be set)")
	}
	if c.CatalogPath == "" {
		return fmt.Errorf("CATALOG_PATH must not be empty")
	}
	if c.TradeTimeoutSeconds <= 0 {
		return fmt.Errorf("TRADE_TIMEOUT_SECONDS must be positive, got %d", c.TradeTimeoutSeconds)
	}
	return nil
}
