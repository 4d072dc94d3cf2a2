package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// Config holds runtime configuration for the pipeline.
type Config struct {
	// DBPath is the sqlite database holding records, provenance and
	// completed flags.
	DBPath string
	// IndexPath is the bleve full-text index directory.
	IndexPath string
	// PDFPath, when set, makes ingest/export write a schedule PDF.
	PDFPath string

	Verbose bool
}

// FileConfig is the optional single-file configuration schema. Flags win
// over file values; the file fills gaps.
type FileConfig struct {
	DB    string `yaml:"db" json:"db"`
	Index string `yaml:"index" json:"index"`
	PDF   string `yaml:"pdf" json:"pdf"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig. Unknown extensions try
// YAML first, then JSON.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// Merge overlays file values onto cfg wherever cfg has no value yet.
func (c Config) Merge(fc FileConfig) Config {
	if c.DBPath == "" {
		c.DBPath = fc.DB
	}
	if c.IndexPath == "" {
		c.IndexPath = fc.Index
	}
	if c.PDFPath == "" {
		c.PDFPath = fc.PDF
	}
	if !c.Verbose {
		c.Verbose = fc.Verbose
	}
	return c
}
