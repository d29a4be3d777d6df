// Package config loads the protocolo YAML configuration.
//
// A configuration file only needs the keys it changes; everything else keeps
// the value from Default. A few settings can also be overridden from the
// environment:
//
//	PROTOCOLO_SOURCE_DIR  directory scanned for PDFs
//	PROTOCOLO_DEST_DIR    directory receiving renamed files
//	PROTOCOLO_LOG_LEVEL   debug, info, warn or error
//
// Environment values take precedence over the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tsawler/protocolo"
	"github.com/tsawler/protocolo/match"
)

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("invalid configuration")

// Placement modes.
const (
	ModeCopy = "copy"
	ModeMove = "move"
)

// Rasterizer backends.
const (
	RasterizerFitz     = "fitz"
	RasterizerPdftoppm = "pdftoppm"
)

// Report formats.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// Config is the complete protocolo configuration.
type Config struct {
	SourceDir   string `yaml:"source_dir"`
	DestDir     string `yaml:"dest_dir"`
	NotFoundDir string `yaml:"not_found_dir"`
	Mode        string `yaml:"mode"`
	TempDir     string `yaml:"temp_dir,omitempty"`

	DPI              float64   `yaml:"dpi"`
	SplitThreshold   int       `yaml:"split_threshold"`
	SplitSpan        int       `yaml:"split_span"`
	PrimaryPattern   string    `yaml:"primary_pattern"`
	SecondaryPattern string    `yaml:"secondary_pattern"`
	RegexEngine      string    `yaml:"regex_engine"`
	Angles           []float64 `yaml:"angles,flow"`
	TextLayer        bool      `yaml:"text_layer"`

	Rasterizer   string `yaml:"rasterizer"`
	PdftoppmPath string `yaml:"pdftoppm_path,omitempty"`

	OCR     OCR     `yaml:"ocr"`
	Log     Log     `yaml:"log"`
	Report  Report  `yaml:"report"`
	Metrics Metrics `yaml:"metrics"`
}

// OCR configures the Tesseract engine.
type OCR struct {
	Languages   []string `yaml:"languages,flow"`
	PageSegMode int      `yaml:"page_seg_mode"`
	Whitelist   string   `yaml:"whitelist,omitempty"`
}

// Log configures the logger.
type Log struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Report configures the batch report. An empty Path disables it.
type Report struct {
	Path   string `yaml:"path,omitempty"`
	Format string `yaml:"format"`
}

// Metrics configures the Prometheus textfile. An empty Textfile disables it.
type Metrics struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		SourceDir:   "./teste",
		DestDir:     "./renomeados",
		NotFoundDir: "naoEncontrado",
		Mode:        ModeCopy,

		DPI:              300,
		SplitThreshold:   10,
		SplitSpan:        10,
		PrimaryPattern:   `[A-Z]{3}\d{10}`,
		SecondaryPattern: `\d{2}/\d{6}-\d`,
		RegexEngine:      string(match.EngineRE2),
		Angles:           []float64{0, -2, 2, 45, -45, 90, 180, 270},
		TextLayer:        true,

		Rasterizer:   RasterizerFitz,
		PdftoppmPath: "pdftoppm",

		OCR: OCR{
			Languages:   []string{"por", "eng"},
			PageSegMode: 3,
		},
		Log: Log{
			Level:  "info",
			Pretty: true,
		},
		Report: Report{
			Format: FormatJSON,
		},
	}
}

// Load reads the YAML file at path on top of Default, applies environment
// overrides and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read config file '%s': %w", path, err)
		}
		if err := cfg.decode(data); err != nil {
			return nil, fmt.Errorf("could not parse config file '%s': %w", path, err)
		}
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decode unmarshals data into c, rejecting unknown keys.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides settings from the environment through lookup, which
// has the signature of os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup("PROTOCOLO_SOURCE_DIR"); ok && v != "" {
		c.SourceDir = v
	}
	if v, ok := lookup("PROTOCOLO_DEST_DIR"); ok && v != "" {
		c.DestDir = v
	}
	if v, ok := lookup("PROTOCOLO_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
}

// Pipeline returns the extraction settings as a protocolo.Config.
func (c *Config) Pipeline() protocolo.Config {
	return protocolo.Config{
		DPI:              c.DPI,
		SplitThreshold:   c.SplitThreshold,
		SplitSpan:        c.SplitSpan,
		PrimaryPattern:   c.PrimaryPattern,
		SecondaryPattern: c.SecondaryPattern,
		RegexEngine:      match.Engine(c.RegexEngine),
		Angles:           append([]float64(nil), c.Angles...),
		TextLayer:        c.TextLayer,
	}
}

// Marshal renders c as YAML.
func (c *Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	return buf.Bytes(), nil
}
