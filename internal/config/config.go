/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	applog "fantranslator/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type LayoutConfig struct {
	DefaultFont string   `yaml:"default_font"`
	DefaultSize int      `yaml:"default_size"`
	LineSpacing float64  `yaml:"line_spacing"`
	FontDirs    []string `yaml:"font_dirs"`
}

type SyncConfig struct {
	TickMs  int `yaml:"tick_ms"`
	WatchMs int `yaml:"watch_ms"`
}

type ProjectConfig struct {
	ThumbnailSize int `yaml:"thumbnail_size"` // longest side in px
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Layout        LayoutConfig  `yaml:"layout"`
	Sync          SyncConfig    `yaml:"sync"`
	Project       ProjectConfig `yaml:"project"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Layout:        LayoutConfig{DefaultFont: "Arial", DefaultSize: 24, LineSpacing: 1.0},
		Sync:          SyncConfig{TickMs: 1000, WatchMs: 500},
		Project:       ProjectConfig{ThumbnailSize: 256},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath  = "FT_CONFIG"
	EnvDefaultFont = "FT_DEFAULT_FONT"
	EnvDefaultSize = "FT_DEFAULT_SIZE"
	EnvLineSpacing = "FT_LINE_SPACING"
	EnvFontDirs    = "FT_FONT_DIRS"
	EnvSyncTickMs  = "FT_SYNC_TICK_MS"
	EnvWatchMs     = "FT_WATCH_MS"
	EnvThumbSize   = "FT_THUMB_SIZE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "FT_LOG_LEVEL"
	EnvLogFormat = "FT_LOG_FORMAT"
	EnvLogSource = "FT_LOG_SOURCE"
	EnvLogFile   = "FT_LOG_FILE"
)

// ConfigPath returns the per-user config file path. FT_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "FanTranslator")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "FanTranslator")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "fantranslator")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges environment overrides.
// An unreadable or malformed file is ignored; defaults and env still apply.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.Layout.DefaultFont) != "" {
		dst.Layout.DefaultFont = strings.TrimSpace(src.Layout.DefaultFont)
	}
	if src.Layout.DefaultSize > 0 {
		dst.Layout.DefaultSize = src.Layout.DefaultSize
	}
	if src.Layout.LineSpacing > 0 {
		dst.Layout.LineSpacing = src.Layout.LineSpacing
	}
	if len(src.Layout.FontDirs) > 0 {
		dst.Layout.FontDirs = append([]string(nil), src.Layout.FontDirs...)
	}
	if src.Sync.TickMs > 0 {
		dst.Sync.TickMs = src.Sync.TickMs
	}
	if src.Sync.WatchMs > 0 {
		dst.Sync.WatchMs = src.Sync.WatchMs
	}
	if src.Project.ThumbnailSize > 0 {
		dst.Project.ThumbnailSize = src.Project.ThumbnailSize
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDefaultFont)); v != "" {
		cfg.Layout.DefaultFont = v
	}
	if n, ok := envInt(EnvDefaultSize); ok {
		cfg.Layout.DefaultSize = n
	}
	if v := strings.TrimSpace(os.Getenv(EnvLineSpacing)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.Layout.LineSpacing = f
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvFontDirs)); v != "" {
		cfg.Layout.FontDirs = filepath.SplitList(v)
	}
	if n, ok := envInt(EnvSyncTickMs); ok {
		cfg.Sync.TickMs = n
	}
	if n, ok := envInt(EnvWatchMs); ok {
		cfg.Sync.WatchMs = n
	}
	if n, ok := envInt(EnvThumbSize); ok {
		cfg.Project.ThumbnailSize = n
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// envInt reads a positive integer override.
func envInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"layout.default_font": EnvDefaultFont,
		"layout.default_size": EnvDefaultSize,
		"layout.line_spacing": EnvLineSpacing,
		"layout.font_dirs":    EnvFontDirs,
		"sync.tick_ms":        EnvSyncTickMs,
		"sync.watch_ms":       EnvWatchMs,
		"project.thumb_size":  EnvThumbSize,
		"logging.level":       EnvLogLevel,
		"logging.format":      EnvLogFormat,
		"logging.source":      EnvLogSource,
		"logging.file":        EnvLogFile,
	}
	env, ok := names[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// TickInterval is the synchronizer period.
func (s SyncConfig) TickInterval() time.Duration {
	if s.TickMs <= 0 {
		return time.Duration(Defaults().Sync.TickMs) * time.Millisecond
	}
	return time.Duration(s.TickMs) * time.Millisecond
}

// WatchInterval is the active-document poll period.
func (s SyncConfig) WatchInterval() time.Duration {
	if s.WatchMs <= 0 {
		return time.Duration(Defaults().Sync.WatchMs) * time.Millisecond
	}
	return time.Duration(s.WatchMs) * time.Millisecond
}

// Options converts the logging section for applog.Init.
func (l LoggingConfig) Options() applog.Options {
	return applog.Options{Level: l.Level, Format: l.Format, AddSource: l.Source, File: l.File}
}
