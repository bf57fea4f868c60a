// Package config is the configuration of the kensa tool.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"nyiyui.ca/hato/kensa/catalog"
	"nyiyui.ca/hato/kensa/catalog/preset"
)

type Config struct {
	// Catalog is the name of a built-in catalog.
	Catalog string `yaml:"catalog"`
	// CatalogFile, if set, is a YAML catalog applied on top of Catalog.
	CatalogFile string `yaml:"catalog-file"`
	// Format is the default output format of the validate command.
	Format string `yaml:"format"`
	// History is the path of the history database. Empty disables history.
	History    string `yaml:"history"`
	Concurrent bool   `yaml:"concurrent"`
}

func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.applyDefaults()
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Catalog == "" {
		c.Catalog = preset.Default
	}
	if c.Format == "" {
		c.Format = "text"
	}
}

// ResolveCatalog returns the catalog selected by c.
func (c *Config) ResolveCatalog() (catalog.Catalog, error) {
	cat, err := preset.Lookup(c.Catalog)
	if err != nil {
		return catalog.Catalog{}, err
	}
	if c.CatalogFile == "" {
		return cat, nil
	}
	return catalog.LoadFile(c.CatalogFile, cat)
}
