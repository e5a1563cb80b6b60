// Package config reads the settings of the mensura command line tool.
package config

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/mensura/mensura/render"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Version is the name of the version to view and edit. Empty means the
	// default version.
	Version string `yaml:"version"`

	Render render.Options `yaml:"render"`

	// LogLevel is one of debug, info, warn and error.
	LogLevel string `yaml:"logLevel"`
	// LogFormat is text or json.
	LogFormat string `yaml:"logFormat"`
}

func Default() *Config {
	return &Config{LogLevel: "info", LogFormat: "text"}
}

// Read decodes a YAML config file. Keys missing from the file keep their
// default values.
func Read(fsys fs.FS, name string) (*Config, error) {
	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("could not open: %v", err)
	}
	defer f.Close()
	config := Default()
	err = yaml.NewDecoder(f).Decode(config)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("could not decode: %v", err)
	}
	if _, err := config.Level(); err != nil {
		return nil, err
	}
	return config, nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
}

// Logger builds a logger writing to w in the configured format.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := c.Level()
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.String(slog.TimeKey, a.Value.Time().Format(time.RFC3339))
			}
			return a
		},
	}
	var handler slog.Handler
	if strings.EqualFold(c.LogFormat, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}
