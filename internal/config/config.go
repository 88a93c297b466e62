// Package config loads the YAML configuration shared by every command.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"column/internal/domain"
	"column/internal/storage"
)

const (
	XDGName = "column"

	// DefaultFile is where the config is read from when no --config is given.
	DefaultFile = "~/.column.yaml"
)

// Default is the configuration used when no file exists, and the base every
// file is merged over.
var Default = Config{
	DataDir:       filepath.Join(xdg.DataHome, XDGName),
	StorageKey:    domain.DefaultStorageKey,
	Listen:        "127.0.0.1:7420",
	Autosave:      "@every 30s",
	MaxImageBytes: 10 << 20,
	LogLevel:      "info",
	Store:         storage.Options{Driver: storage.DriverSQLite},
}

type Config struct {
	DataDir       string          `yaml:"dataDir" validate:"required"`
	StorageKey    string          `yaml:"storageKey" validate:"required,excludesall=/\\"`
	Listen        string          `yaml:"listen" validate:"required,hostname_port"`
	OpenBrowser   bool            `yaml:"openBrowser"`
	Autosave      string          `yaml:"autosave" validate:"omitempty,cron"`
	ResumeDraft   bool            `yaml:"resumeDraft"`
	MaxImageBytes int64           `yaml:"maxImageBytes" validate:"gt=0"`
	LogLevel      string          `yaml:"logLevel" validate:"oneof=panic fatal error warn warning info debug trace"`
	Store         storage.Options `yaml:"store"`
}

// NewFromReader parses YAML over Default and validates the result.
func NewFromReader(r io.Reader) (*Config, error) {
	c := Default

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("unable to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config: %w", err)
	}
	if c.DataDir, err = homedir.Expand(c.DataDir); err != nil {
		return nil, fmt.Errorf("expand dataDir: %w", err)
	}
	if c.Store.Path, err = homedir.Expand(c.Store.Path); err != nil {
		return nil, fmt.Errorf("expand store.path: %w", err)
	}

	if err := validator.New().Struct(c); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}
	return &c, nil
}

// Load reads the file at path. A missing file yields Default.
func Load(path string) (*Config, error) {
	expanded, err := homedir.Expand(path)
	if err != nil {
		return nil, fmt.Errorf("expand config path: %w", err)
	}
	f, err := os.Open(expanded)
	if errors.Is(err, os.ErrNotExist) {
		return NewFromReader(strings.NewReader(""))
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return NewFromReader(f)
}

// Logger builds the process logger at the configured level.
func (c *Config) Logger(out io.Writer) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
