// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API credentials from, in order of precedence,
// the process environment, a dotenv file, and a directory of plain-text
// key files (filename is the key name, trimmed contents the value).
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Well-known credential names.
const (
	TwitterAPIKeyEnv  = "TWITTER_API_KEY"
	TwitterAPIKeyFile = "twitter-api-key"
)

// Set holds credentials gathered from a dotenv file and a key directory.
// Environment variables are consulted at lookup time.
type Set struct {
	dotenv map[string]string
	files  map[string]string
}

// Load reads dotenvPath and dir. Either may be absent; a missing file or
// directory contributes nothing.
func Load(dotenvPath, dir string, logger *zap.Logger) (*Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	env, err := LoadDotEnv(dotenvPath)
	if err != nil {
		return nil, err
	}
	files, err := LoadDir(dir, logger)
	if err != nil {
		return nil, err
	}
	return &Set{dotenv: env, files: files}, nil
}

// Get returns the value for a credential, looking first at the environment
// variable envName, then the dotenv entry envName, then the key file
// fileName. The second result names where the value came from.
func (s *Set) Get(envName, fileName string) (value, source string, ok bool) {
	if v := strings.TrimSpace(os.Getenv(envName)); v != "" {
		return v, "env", true
	}
	if v, ok := s.dotenv[envName]; ok {
		return v, "dotenv", true
	}
	if v, ok := s.files[fileName]; ok {
		return v, "file", true
	}
	return "", "", false
}

// Names lists the credential names found in files, sorted. Values are not
// exposed.
func (s *Set) Names() []string {
	names := make([]string, 0, len(s.dotenv)+len(s.files))
	for k := range s.dotenv {
		names = append(names, k)
	}
	for k := range s.files {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// LoadDotEnv parses a KEY=value file. Keys are returned upper-cased; empty
// values are dropped. A missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	out := map[string]string{}
	if path == "" {
		return out, nil
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("reading dotenv %s: %w", path, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("parsing dotenv %s: %w", path, err)
	}

	for k, val := range v.AllSettings() {
		s := strings.TrimSpace(fmt.Sprint(val))
		if s != "" {
			out[strings.ToUpper(k)] = s
		}
	}
	return out, nil
}

// LoadDir reads every regular, non-hidden file in dir into a map of
// filename to trimmed contents. A missing directory yields an empty map;
// unreadable files are logged and skipped.
func LoadDir(dir string, logger *zap.Logger) (map[string]string, error) {
	out := map[string]string{}
	if dir == "" {
		return out, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return out, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("skipping unreadable secret", zap.String("name", name), zap.Error(err))
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			out[name] = value
		}
	}
	return out, nil
}
