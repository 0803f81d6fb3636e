// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

// Package config reads and writes the offsign configuration file, a plain
// list of "key = value" lines stored in the data directory.
package config

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Config holds the settings shared by the offsign commands.
type Config struct {
	DataDir    string // directory for the store, seed file and config
	ListenAddr string // HTTP API listen address
	GRPCAddr   string // remote signer listen address
	Network    string // "mainnet", "testnet" or "regtest"
	LogLevel   string
	LogFile    string // empty logs to stderr
	NodeURL    string // node RPC endpoint, empty for offline use
}

// Config file keys.
const (
	keyDataDir  = "datadir"
	keyListen   = "listen"
	keyGRPC     = "grpc"
	keyNetwork  = "network"
	keyLogLevel = "loglevel"
	keyLogFile  = "logfile"
	keyNodeURL  = "nodeurl"
)

// DefaultDataDir returns ~/.offsign, or .offsign in the working directory
// when the home directory is unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".offsign"
	}
	return filepath.Join(home, ".offsign")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		ListenAddr: "127.0.0.1:14280",
		GRPCAddr:   "127.0.0.1:14281",
		Network:    "mainnet",
		LogLevel:   "info",
	}
}

// ConfigPath returns the config file path inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(filepath.Clean(dataDir), "config")
}

// LoadConfig reads the file at path over DefaultConfig. Blank lines and
// lines starting with '#' are skipped; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d: %q", err, lineNo, line)
		}
		cfg.set(key, value)
	}
	if err := sc.Err(); err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}
	return cfg, nil
}

// parseKeyValue splits a line on its first '='.
func parseKeyValue(line string) (string, string, error) {
	key, value, ok := strings.Cut(line, "=")
	if !ok {
		return "", "", ErrInvalidConfigLine
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return "", "", ErrInvalidConfigLine
	}
	return key, strings.TrimSpace(value), nil
}

func (c *Config) set(key, value string) {
	switch key {
	case keyDataDir:
		c.DataDir = value
	case keyListen:
		c.ListenAddr = value
	case keyGRPC:
		c.GRPCAddr = value
	case keyNetwork:
		c.Network = value
	case keyLogLevel:
		c.LogLevel = value
	case keyLogFile:
		c.LogFile = value
	case keyNodeURL:
		c.NodeURL = value
	}
}

// SaveConfig writes cfg to path, creating the parent directory.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Offsign Configuration\n\n")
	for _, kv := range [][2]string{
		{keyDataDir, cfg.DataDir},
		{keyListen, cfg.ListenAddr},
		{keyGRPC, cfg.GRPCAddr},
		{keyNetwork, cfg.Network},
		{keyLogLevel, cfg.LogLevel},
		{keyLogFile, cfg.LogFile},
		{keyNodeURL, cfg.NodeURL},
	} {
		fmt.Fprintf(&b, "%s = %s\n", kv[0], kv[1])
	}

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
