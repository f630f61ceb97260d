// Package config manages callsched's operational configuration: solver
// limits, data file locations, and reporting/server toggles. Grounded on
// the daemon's JSON-file configuration style
// (internal/config/daemon_config.go), scoped down from a network daemon's
// settings to a CLI scheduler's. Values come from built-in defaults
// overlaid by an optional JSON file; environment variables are not read.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Config is callsched's full operational configuration.
type Config struct {
	Solver  SolverConfig  `json:"solver"`
	Data    DataConfig    `json:"data"`
	Report  ReportConfig  `json:"report"`
	Server  ServerConfig  `json:"server"`
	History HistoryConfig `json:"history"`
}

// SolverConfig governs the optimization core's search.
type SolverConfig struct {
	TimeLimit time.Duration `json:"time_limit"`
	Alpha     float64       `json:"alpha"`
	Beta      float64       `json:"beta"`
	Gamma     float64       `json:"gamma"`
}

// DataConfig locates the CSV/holiday side files the loaders read.
type DataConfig struct {
	StaffFile    string `json:"staff_file"`
	HolidayFile  string `json:"holiday_file"`
	WarehousePath string `json:"warehouse_path"`
	HistoryPath  string `json:"history_path"`
}

// ReportConfig governs the human-readable reporting output.
type ReportConfig struct {
	Color bool `json:"color"`
}

// ServerConfig governs the read-only HTTP API.
type ServerConfig struct {
	ListenAddr      string        `json:"listen_addr"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// HistoryConfig governs the cross-week relationship graph.
type HistoryConfig struct {
	Enabled bool `json:"enabled"`
}

// Default returns callsched's out-of-the-box configuration.
func Default() *Config {
	return &Config{
		Solver: SolverConfig{
			TimeLimit: 60 * time.Second,
			Alpha:     1,
			Beta:      0.01,
			Gamma:     0.001,
		},
		Data: DataConfig{
			StaffFile:     "staff.csv",
			HolidayFile:   "",
			WarehousePath: "callsched.db",
			HistoryPath:   "callsched-history.kuzu",
		},
		Report: ReportConfig{Color: true},
		Server: ServerConfig{
			ListenAddr:      "localhost:8070",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		History: HistoryConfig{Enabled: false},
	}
}

// Load reads a JSON configuration file over the defaults. A missing path
// is not an error: it returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to path as indented JSON.
func (c *Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks that every configured value is operationally usable.
func (c *Config) Validate() error {
	if c.Solver.TimeLimit <= 0 {
		return fmt.Errorf("solver time limit must be positive, got %v", c.Solver.TimeLimit)
	}
	if c.Solver.Alpha <= 0 {
		return fmt.Errorf("solver alpha weight must be positive, got %v", c.Solver.Alpha)
	}
	if c.Data.StaffFile == "" {
		return fmt.Errorf("data.staff_file must be set")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 || c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	return nil
}
