// cmd/platecad/config.go
// Copyright(c) 2025 platecad contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/platecad/platecad/editor"
	"github.com/platecad/platecad/log"
)

const CurrentConfigVersion = 1

const maxRecentFiles = 10

type Config struct {
	Version int

	Editor editor.Settings

	// Number of scene files kept in memory when they are read from remote
	// storage and how long they stay there.
	CacheSize       int
	CacheTTLSeconds int

	// Most recently opened or saved scenes, most recent first.
	RecentFiles []string
}

func getDefaultConfig() *Config {
	return &Config{
		Version:         CurrentConfigVersion,
		Editor:          editor.DefaultSettings(),
		CacheSize:       32,
		CacheTTLSeconds: 300,
	}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// AddRecent records loc as the most recently used scene.
func (c *Config) AddRecent(loc string) {
	c.RecentFiles = slices.DeleteFunc(c.RecentFiles, func(s string) bool { return s == loc })
	c.RecentFiles = slices.Insert(c.RecentFiles, 0, loc)
	if len(c.RecentFiles) > maxRecentFiles {
		c.RecentFiles = c.RecentFiles[:maxRecentFiles]
	}
}

func configFilePath(lg *log.Logger) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}

	dir = filepath.Join(dir, "platecad")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		lg.Errorf("%s: unable to make directory for config file: %v", dir, err)
	}

	return filepath.Join(dir, "config.json")
}

func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}

func (c *Config) Save(fn string, lg *log.Logger) error {
	lg.Infof("Saving config to: %s", fn)

	var buf bytes.Buffer
	if err := c.Encode(&buf); err != nil {
		return err
	}
	return os.WriteFile(fn, buf.Bytes(), 0o644)
}

// LoadOrMakeDefaultConfig reads the configuration from fn, or from the
// default location if fn is empty. Settings missing from the file keep
// their default values. If the file is malformed, the default
// configuration is returned along with an error.
func LoadOrMakeDefaultConfig(fn string, lg *log.Logger) (config *Config, configErr error) {
	if fn == "" {
		fn = configFilePath(lg)
	}
	lg.Infof("Loading config from: %s", fn)

	config = getDefaultConfig()

	contents, err := os.ReadFile(fn)
	if err != nil {
		if !os.IsNotExist(err) {
			configErr = err
		}
		return
	}

	if err := json.Unmarshal(contents, config); err != nil {
		return getDefaultConfig(), fmt.Errorf("%s: %w", fn, err)
	}

	if config.Version < CurrentConfigVersion {
		lg.Infof("%s: upgrading config from version %d", fn, config.Version)
		config.Version = CurrentConfigVersion
	}
	for _, msg := range config.Editor.Sanitize() {
		lg.Warnf("%s: %s", fn, msg)
	}

	return
}
