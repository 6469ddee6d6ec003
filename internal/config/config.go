package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// Config holds the viewer settings read from an optional docnav.yaml.
type Config struct {
	Style      string   `mapstructure:"style"`
	TreeWidth  int      `mapstructure:"tree-width"`
	Excludes   []string `mapstructure:"excludes"`
	Extensions []string `mapstructure:"extensions"`
	Verbose    bool     `mapstructure:"verbose"`
}

// Load reads configuration from the given file, or, when path is empty,
// looks for docnav.yaml in the XDG config directory and the working
// directory. A missing config file yields the defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	v.SetDefault("style", "tokyo-night")
	v.SetDefault("tree-width", 28)
	v.SetDefault("extensions", []string{".md", ".mdx"})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("docnav")
		v.AddConfigPath(filepath.Join(xdg.ConfigHome, "docnav"))
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}
