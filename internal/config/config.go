package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DefaultGooscaleURL = "https://partners-staging.gooscale.com"
	defaultScopes      = "read_customers,write_customers,read_orders,write_orders,read_products,write_products"
)

// requiredKeys must be present in the environment for the app to start
var requiredKeys = []string{"SHOPIFY_API_KEY", "SHOPIFY_API_SECRET", "DATABASE_URL"}

// Config holds the process configuration read from the environment
type Config struct {
	Port     string
	LogLevel string

	ShopifyAPIKey    string
	ShopifyAPISecret string
	Scopes           []string
	AppURL           string
	ShopCustomDomain string

	DatabaseURL  string
	DatabaseName string
	RedisURL     string

	// MainAppURL is the raw MAIN_APP_URL value and may be empty
	MainAppURL     string
	GooscaleAPIURL string
	GooscaleAPIKey string
	RelayTimeout   time.Duration
}

// Load reads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SCOPES", defaultScopes)
	v.SetDefault("SHOPIFY_APP_URL", DefaultGooscaleURL)
	v.SetDefault("DATABASE_NAME", "gooscale_shopify")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("RELAY_TIMEOUT", "15s")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	var missing []string
	for _, key := range requiredKeys {
		if strings.TrimSpace(v.GetString(key)) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	mainAppURL := strings.TrimRight(strings.TrimSpace(v.GetString("MAIN_APP_URL")), "/")
	gooscaleURL := mainAppURL
	if gooscaleURL == "" {
		gooscaleURL = DefaultGooscaleURL
	}

	appURL := strings.TrimRight(strings.TrimSpace(v.GetString("SHOPIFY_APP_URL")), "/")
	if !strings.HasPrefix(appURL, "http://") && !strings.HasPrefix(appURL, "https://") {
		appURL = "https://" + appURL
	}

	return &Config{
		Port:             v.GetString("PORT"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		ShopifyAPIKey:    v.GetString("SHOPIFY_API_KEY"),
		ShopifyAPISecret: v.GetString("SHOPIFY_API_SECRET"),
		Scopes:           splitScopes(v.GetString("SCOPES")),
		AppURL:           appURL,
		ShopCustomDomain: strings.ToLower(strings.TrimSpace(v.GetString("SHOP_CUSTOM_DOMAIN"))),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DatabaseName:     v.GetString("DATABASE_NAME"),
		RedisURL:         v.GetString("REDIS_URL"),
		MainAppURL:       mainAppURL,
		GooscaleAPIURL:   gooscaleURL,
		GooscaleAPIKey:   v.GetString("GOOSCALE_API_KEY"),
		RelayTimeout:     v.GetDuration("RELAY_TIMEOUT"),
	}, nil
}

// WebhookAddress is where Shopify delivers the relayed topics
func (c *Config) WebhookAddress() string {
	return c.AppURL + "/webhooks"
}

// ScopeString is the comma-separated scope list Shopify expects
func (c *Config) ScopeString() string {
	return strings.Join(c.Scopes, ",")
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}
