// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment overrides.
const (
	EnvConfigPath   = "ORDERRECORDS_CONFIG"
	EnvPort         = "ORDERRECORDS_PORT"
	EnvLogLevel     = "ORDERRECORDS_LOG_LEVEL"
	EnvExporter     = "OTEL_TRACES_EXPORTER"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads the YAML file at path over Default, applies environment
// overrides and validates the result.
//
// # Inputs
//
//   - path: Config file. Empty uses $ORDERRECORDS_CONFIG; when that is also
//     empty only defaults and the environment apply. A missing file is an
//     error only when a path was given explicitly.
//
// # Outputs
//
//   - Config: The merged configuration.
//   - error: Read, parse or validation failure.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks struct constraints and the schedule calendar.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := cfg.Schedule.Calendar(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// WriteDefault writes the default configuration to path.
func WriteDefault(path string) error {
	data, err := yaml.Marshal(Default())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func applyEnv(cfg *Config) error {
	if raw := os.Getenv(EnvPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Server.Port = port
	}
	cfg.Logging.Level = getEnvOr(EnvLogLevel, cfg.Logging.Level)
	cfg.Telemetry.Exporter = getEnvOr(EnvExporter, cfg.Telemetry.Exporter)
	cfg.Telemetry.Endpoint = getEnvOr(EnvOTLPEndpoint, cfg.Telemetry.Endpoint)
	return nil
}

func getEnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
