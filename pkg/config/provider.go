package config

import (
	"fmt"
	"time"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetAPIConfig() (*APIData, error)
	GetProductConfig() (*ProductData, error)
	GetRESTServerConfig() (*RESTServerData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	API        APIData        `json:"api"`
	Product    ProductData    `json:"product"`
	RESTServer RESTServerData `json:"rest_server,omitempty"`
	Debug      bool           `json:"debug,omitempty"`
}

// APIData holds configuration for the upstream IWLS REST API
type APIData struct {
	BaseURL      string        `json:"base_url"`
	Timeout      time.Duration `json:"timeout,omitempty"`
	CachePath    string        `json:"cache_path,omitempty"`
	CacheTTL     time.Duration `json:"cache_ttl,omitempty"`
	MaxRetries   int           `json:"max_retries,omitempty"`
	StationLimit int           `json:"station_limit,omitempty"`
}

// ProductData holds configuration for S-100 product file generation
type ProductData struct {
	TemplatePath   string  `json:"template_path"`
	OutputFolder   string  `json:"output_folder"`
	TrendThreshold float64 `json:"trend_threshold,omitempty"`
}

// RESTServerData holds configuration for the HTTP API
type RESTServerData struct {
	ListenAddr     string `json:"listen_addr,omitempty"`
	Port           int    `json:"port"`
	DefaultListLen int    `json:"default_list_length,omitempty"`
}

// Validate checks the configuration for missing required fields
func (c *ConfigData) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	if c.Product.TemplatePath == "" {
		return fmt.Errorf("product.template_path is required")
	}
	if c.Product.OutputFolder == "" {
		return fmt.Errorf("product.output_folder is required")
	}
	return nil
}

// ApplyDefaults fills in defaults for optional fields
func (c *ConfigData) ApplyDefaults() {
	if c.API.Timeout == 0 {
		c.API.Timeout = 30 * time.Second
	}
	if c.API.CacheTTL == 0 {
		c.API.CacheTTL = 5 * time.Minute
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = 3
	}
	if c.API.StationLimit == 0 {
		c.API.StationLimit = 10
	}
	if c.Product.TrendThreshold == 0 {
		c.Product.TrendThreshold = 0.2
	}
	if c.RESTServer.Port == 0 {
		c.RESTServer.Port = 5000
	}
	if c.RESTServer.DefaultListLen == 0 {
		c.RESTServer.DefaultListLen = 10
	}
}
