// ABOUTME: Persists the session token under the user's config directory
// ABOUTME: Also hosts the terminal seams used for password entry

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	isTerminal           = term.IsTerminal
	readTerminalPassword = term.ReadPassword
)

// tokenPath returns $XDG_CONFIG_HOME/deep-thoughts/token, falling back to ~/.config.
func tokenPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "deep-thoughts", "token"), nil
}

// getToken returns the token from DEEP_THOUGHTS_TOKEN or the token file.
func getToken() string {
	if token := os.Getenv("DEEP_THOUGHTS_TOKEN"); token != "" {
		return token
	}

	path, err := tokenPath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

func saveToken(token string) error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("saving token: %w", err)
	}
	return nil
}

func removeToken() error {
	path, err := tokenPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing token: %w", err)
	}
	return nil
}
