package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the server needs to run.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Sems struct {
		Account     string `yaml:"account"`
		Password    string `yaml:"password"`
		LoginRegion string `yaml:"login_region"` // "us" or "eu"
		DataRegion  string `yaml:"data_region"`  // "us" or "eu"
		InverterID  string `yaml:"inverter_id"`
	} `yaml:"sems"`

	Weather struct {
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
		Timezone  string  `yaml:"timezone"`
	} `yaml:"weather"`

	Dashboard struct {
		Username string `yaml:"username"`
		Password string `yaml:"password"`
	} `yaml:"dashboard"`

	Analysis struct {
		ExpectedDailyEnergyKwh float64 `yaml:"expected_daily_energy_kwh"`
	} `yaml:"analysis"`

	Cache struct {
		TodayTTLMinutes int `yaml:"today_ttl_minutes"`
	} `yaml:"cache"`
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":5001"
	}
	if c.Sems.LoginRegion == "" {
		c.Sems.LoginRegion = "us"
	}
	if c.Sems.DataRegion == "" {
		c.Sems.DataRegion = "eu"
	}
	if c.Analysis.ExpectedDailyEnergyKwh == 0 {
		c.Analysis.ExpectedDailyEnergyKwh = 20.0
	}
	if c.Cache.TodayTTLMinutes == 0 {
		c.Cache.TodayTTLMinutes = 5
	}
}

func (c *Config) validate() error {
	if c.Sems.Account == "" {
		return fmt.Errorf("sems.account cannot be empty")
	}
	if c.Sems.Password == "" {
		return fmt.Errorf("sems.password cannot be empty")
	}
	if c.Sems.InverterID == "" {
		return fmt.Errorf("sems.inverter_id cannot be empty")
	}
	if c.Sems.LoginRegion != "us" && c.Sems.LoginRegion != "eu" {
		return fmt.Errorf("sems.login_region must be \"us\" or \"eu\", got %q", c.Sems.LoginRegion)
	}
	if c.Sems.DataRegion != "us" && c.Sems.DataRegion != "eu" {
		return fmt.Errorf("sems.data_region must be \"us\" or \"eu\", got %q", c.Sems.DataRegion)
	}
	if c.Dashboard.Username == "" || c.Dashboard.Password == "" {
		return fmt.Errorf("dashboard.username and dashboard.password cannot be empty")
	}
	return nil
}

// TodayTTL returns the cache lifetime for the current (still changing) day.
func (c *Config) TodayTTL() time.Duration {
	return time.Duration(c.Cache.TodayTTLMinutes) * time.Minute
}
