// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the orderrecords YAML configuration.
package config

import (
	"fmt"
	"time"

	"github.com/AleutianAI/OrderRecords/pkg/logging"
	"github.com/AleutianAI/OrderRecords/services/orders"
	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document/xlsx"
	"github.com/AleutianAI/OrderRecords/services/orders/ledger"
	"github.com/AleutianAI/OrderRecords/services/orders/middleware"
	"github.com/AleutianAI/OrderRecords/services/orders/sprint"
	"github.com/AleutianAI/OrderRecords/services/orders/telemetry"
	"github.com/AleutianAI/OrderRecords/services/orders/views"
)

type Config struct {
	Server    ServerConfig               `yaml:"server"`
	Storage   StorageConfig              `yaml:"storage"`
	Views     views.Names                `yaml:"views"`
	Schedule  ScheduleConfig             `yaml:"schedule"`
	Logging   LoggingConfig              `yaml:"logging"`
	Telemetry telemetry.Config           `yaml:"telemetry"`
	RateLimit middleware.RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port" validate:"gte=1,lte=65535"`
	GinMode         string        `yaml:"gin_mode" validate:"omitempty,oneof=debug release test"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

type StorageConfig struct {
	FileName        string `yaml:"file_name" validate:"required,excludesall=/\\"`
	SerializeWrites bool   `yaml:"serialize_writes"`
	HeaderFill      string `yaml:"header_fill" validate:"omitempty,len=6,hexadecimal"` // RRGGBB
	AutoSize        bool   `yaml:"auto_size"`
}

// ScheduleConfig describes the window calendar. AnchorStart is yyyy-MM-dd.
type ScheduleConfig struct {
	AnchorNumber      int    `yaml:"anchor_number" validate:"gte=0"`
	AnchorStart       string `yaml:"anchor_start" validate:"required,datetime=2006-01-02"`
	PeriodDays        int    `yaml:"period_days" validate:"gt=0"`
	WindowDays        int    `yaml:"window_days" validate:"gt=0,ltefield=PeriodDays"`
	FirstNumber       int    `yaml:"first_number" validate:"gte=0"`
	DefaultLastNumber int    `yaml:"default_last_number" validate:"gtefield=FirstNumber"`
	ExtraWindows      int    `yaml:"extra_windows" validate:"gte=0"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir    string `yaml:"dir"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
	Quiet  bool   `yaml:"quiet"`
}

// Default returns the configuration that matches existing documents.
func Default() Config {
	cal := sprint.DefaultCalendar()
	return Config{
		Server: ServerConfig{
			Port:            orders.DefaultPort,
			GinMode:         "release",
			ShutdownTimeout: orders.DefaultShutdownTimeout,
		},
		Storage: StorageConfig{
			FileName:        ledger.DefaultFileName,
			SerializeWrites: true,
			HeaderFill:      xlsx.DefaultHeaderFill,
			AutoSize:        true,
		},
		Views:    views.DefaultNames(),
		Schedule: scheduleFromCalendar(cal),
		Logging:  LoggingConfig{Level: "info"},
		Telemetry: telemetry.Config{
			Exporter:    telemetry.ExporterNone,
			ServiceName: orders.DefaultServiceName,
		},
	}
}

func scheduleFromCalendar(cal sprint.Calendar) ScheduleConfig {
	return ScheduleConfig{
		AnchorNumber:      cal.AnchorNumber,
		AnchorStart:       dates.Format(cal.AnchorStart),
		PeriodDays:        cal.PeriodDays,
		WindowDays:        cal.WindowDays,
		FirstNumber:       cal.FirstNumber,
		DefaultLastNumber: cal.DefaultLastNumber,
		ExtraWindows:      cal.ExtraWindows,
	}
}

// Calendar converts the schedule section and validates the result.
func (s ScheduleConfig) Calendar() (sprint.Calendar, error) {
	start, err := dates.Parse(s.AnchorStart)
	if err != nil {
		return sprint.Calendar{}, fmt.Errorf("schedule.anchor_start: %w", err)
	}
	cal := sprint.Calendar{
		AnchorNumber:      s.AnchorNumber,
		AnchorStart:       start,
		PeriodDays:        s.PeriodDays,
		WindowDays:        s.WindowDays,
		FirstNumber:       s.FirstNumber,
		DefaultLastNumber: s.DefaultLastNumber,
		ExtraWindows:      s.ExtraWindows,
	}
	if err := cal.Validate(); err != nil {
		return sprint.Calendar{}, fmt.Errorf("schedule: %w", err)
	}
	return cal, nil
}

// LoggerConfig converts the logging section.
func (l LoggingConfig) LoggerConfig(service string) (logging.Config, error) {
	level, err := logging.ParseLevel(l.Level)
	if err != nil {
		return logging.Config{}, fmt.Errorf("logging.level: %w", err)
	}
	return logging.Config{
		Level:   level,
		LogDir:  l.Dir,
		Service: service,
		Format:  logging.Format(l.Format),
		Quiet:   l.Quiet,
	}, nil
}

// LedgerConfig builds the store service configuration.
func (c Config) LedgerConfig() (ledger.Config, error) {
	cal, err := c.Schedule.Calendar()
	if err != nil {
		return ledger.Config{}, err
	}
	return ledger.Config{
		FileName:        c.Storage.FileName,
		Views:           c.Views,
		Calendar:        cal,
		SerializeWrites: c.Storage.SerializeWrites,
	}, nil
}

// ServiceConfig builds the HTTP service configuration.
func (c Config) ServiceConfig() (orders.Config, error) {
	lc, err := c.LedgerConfig()
	if err != nil {
		return orders.Config{}, err
	}
	return orders.Config{
		Host:            c.Server.Host,
		Port:            c.Server.Port,
		GinMode:         c.Server.GinMode,
		ShutdownTimeout: c.Server.ShutdownTimeout,
		ServiceName:     c.Telemetry.ServiceName,
		Ledger:          lc,
		Storage:         c.StoreOptions(),
		RateLimit:       c.RateLimit,
		Telemetry:       c.Telemetry,
	}, nil
}

// StoreOptions builds the workbook store options.
func (c Config) StoreOptions() xlsx.Options {
	return xlsx.Options{HeaderFill: c.Storage.HeaderFill, AutoSize: c.Storage.AutoSize}
}
