package siteconfig

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"gopkg.in/yaml.v3"
)

// Load reads a site configuration from a .yaml, .yml or .json file.
func Load(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "read site config").
			WithContext("file", path).Build()
	}
	cfg, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "parse site config").
			WithContext("file", path).Build()
	}
	return cfg, nil
}

// Parse decodes data according to ext (".json" or YAML otherwise).
func Parse(data []byte, ext string) (*SiteConfig, error) {
	var cfg SiteConfig
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Marshal encodes cfg as YAML.
func Marshal(cfg *SiteConfig) ([]byte, error) {
	return yaml.Marshal(cfg)
}
