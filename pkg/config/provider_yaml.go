package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		API struct {
			BaseURL      string `yaml:"base_url"`
			Timeout      string `yaml:"timeout,omitempty"`
			CachePath    string `yaml:"cache_path,omitempty"`
			CacheTTL     string `yaml:"cache_ttl,omitempty"`
			MaxRetries   int    `yaml:"max_retries,omitempty"`
			StationLimit int    `yaml:"station_limit,omitempty"`
		} `yaml:"api"`
		Product struct {
			TemplatePath   string  `yaml:"template_path"`
			OutputFolder   string  `yaml:"output_folder"`
			TrendThreshold float64 `yaml:"trend_threshold,omitempty"`
		} `yaml:"product"`
		RESTServer struct {
			ListenAddr     string `yaml:"listen_addr,omitempty"`
			Port           int    `yaml:"port,omitempty"`
			DefaultListLen int    `yaml:"default_list_length,omitempty"`
		} `yaml:"rest_server,omitempty"`
		Debug bool `yaml:"debug,omitempty"`
	}

	err = yaml.Unmarshal(cfgFile, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		API: APIData{
			BaseURL:      yamlConfig.API.BaseURL,
			CachePath:    yamlConfig.API.CachePath,
			MaxRetries:   yamlConfig.API.MaxRetries,
			StationLimit: yamlConfig.API.StationLimit,
		},
		Product: ProductData{
			TemplatePath:   yamlConfig.Product.TemplatePath,
			OutputFolder:   yamlConfig.Product.OutputFolder,
			TrendThreshold: yamlConfig.Product.TrendThreshold,
		},
		RESTServer: RESTServerData{
			ListenAddr:     yamlConfig.RESTServer.ListenAddr,
			Port:           yamlConfig.RESTServer.Port,
			DefaultListLen: yamlConfig.RESTServer.DefaultListLen,
		},
		Debug: yamlConfig.Debug,
	}

	if yamlConfig.API.Timeout != "" {
		d, err := time.ParseDuration(yamlConfig.API.Timeout)
		if err != nil {
			return nil, err
		}
		config.API.Timeout = d
	}
	if yamlConfig.API.CacheTTL != "" {
		d, err := time.ParseDuration(yamlConfig.API.CacheTTL)
		if err != nil {
			return nil, err
		}
		config.API.CacheTTL = d
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// GetAPIConfig returns the upstream API configuration section
func (y *YAMLProvider) GetAPIConfig() (*APIData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.API, nil
}

// GetProductConfig returns the product generation configuration section
func (y *YAMLProvider) GetProductConfig() (*ProductData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.Product, nil
}

// GetRESTServerConfig returns the HTTP API configuration section
func (y *YAMLProvider) GetRESTServerConfig() (*RESTServerData, error) {
	if y.config == nil {
		if _, err := y.LoadConfig(); err != nil {
			return nil, err
		}
	}
	return &y.config.RESTServer, nil
}

// Close is a no-op for the YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}
