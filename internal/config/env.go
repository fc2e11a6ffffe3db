// Package config provides environment helpers for go-footik commands.
package config

import (
	"os"
	"strconv"
)

// Defaults used when the environment does not override them.
const (
	DefaultDashboardPort = "8090"
	DefaultBridgePort    = 8091
	DefaultLogLevel      = "info"
)

// RigConfigPath returns the rig YAML path from FOOTIK_CONFIG.
// Falls back to the provided default (which may be empty).
func RigConfigPath(defaultPath string) string {
	if p := os.Getenv("FOOTIK_CONFIG"); p != "" {
		return p
	}
	return defaultPath
}

// ScenePath returns the terrain scene path from FOOTIK_SCENE.
func ScenePath(defaultPath string) string {
	if p := os.Getenv("FOOTIK_SCENE"); p != "" {
		return p
	}
	return defaultPath
}

// DashboardPort returns the dashboard port from FOOTIK_PORT or the default.
func DashboardPort() string {
	if port := os.Getenv("FOOTIK_PORT"); port != "" {
		return port
	}
	return DefaultDashboardPort
}

// BridgePort returns the bridge port from PORT, or fallback when unset or malformed.
func BridgePort(fallback int) int {
	if env := os.Getenv("PORT"); env != "" {
		if port, err := strconv.Atoi(env); err == nil && port > 0 {
			return port
		}
	}
	return fallback
}

// LogLevel returns the log level from FOOTIK_LOG_LEVEL or the default.
func LogLevel() string {
	if lvl := os.Getenv("FOOTIK_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return DefaultLogLevel
}
