package tracing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// OTelConfig contains configuration for the OpenTelemetry backend
type OTelConfig struct {
	// Enabled determines whether tracing is enabled
	Enabled bool `yaml:"enabled"`

	// ServiceName is the name of the service
	ServiceName string `yaml:"service_name"`

	// CollectorEndpoint is the endpoint of the OpenTelemetry collector
	CollectorEndpoint string `yaml:"collector_endpoint"`
}

// LoadOTelConfig loads an OTelConfig from a YAML file
func LoadOTelConfig(filePath string) (OTelConfig, error) {
	if !isValidFilePath(filePath) {
		return OTelConfig{}, fmt.Errorf("invalid file path")
	}

	data, err := os.ReadFile(filePath) // #nosec G304 - Path is validated with isValidFilePath() before use
	if err != nil {
		return OTelConfig{}, fmt.Errorf("failed to read tracing config file: %w", err)
	}

	var config OTelConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return OTelConfig{}, fmt.Errorf("failed to unmarshal tracing config: %w", err)
	}

	return config, nil
}

// isValidFilePath checks if a file path is valid and safe
func isValidFilePath(filePath string) bool {
	if filePath == "" {
		return false
	}

	cleanPath := filepath.Clean(filePath)
	if strings.Contains(cleanPath, "..") {
		return false
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return false
	}

	// Reject paths that could leak sensitive process or device state.
	if strings.HasPrefix(absPath, "/proc") ||
		strings.HasPrefix(absPath, "/sys") ||
		strings.HasPrefix(absPath, "/dev") {
		return false
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return false
	}

	return fileInfo.Mode().IsRegular()
}
