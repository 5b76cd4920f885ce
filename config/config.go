package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Siren        SirenConfig        `yaml:"siren"`
	Server       ServerConfig       `yaml:"server"`
	Audio        AudioConfig        `yaml:"audio"`
	TTS          TTSConfig          `yaml:"tts"`
	Translate    TranslateConfig    `yaml:"translate"`
	Connectivity ConnectivityConfig `yaml:"connectivity"`
	Health       HealthConfig       `yaml:"health"`
	Log          LogConfig          `yaml:"log"`
}

type SirenConfig struct {
	ID string `yaml:"id"`
}

type ServerConfig struct {
	URL string `yaml:"url"`
	// ProbeURL is polled with HEAD requests at startup until the internet
	// link is up, before the control session is dialed.
	ProbeURL      string `yaml:"probe_url"`
	ProbeAttempts int    `yaml:"probe_attempts"`
	ProbeWait     string `yaml:"probe_wait"`
	// ReconnectBackoff is the initial delay between session redials; it
	// doubles up to ReconnectMaxBackoff.
	ReconnectBackoff    string `yaml:"reconnect_backoff"`
	ReconnectMaxBackoff string `yaml:"reconnect_max_backoff"`
}

type AudioConfig struct {
	AssetDir        string `yaml:"asset_dir"`
	WorkDir         string `yaml:"work_dir"`
	DeviceHint      string `yaml:"device_hint"`
	MaxInitAttempts int    `yaml:"max_init_attempts"`
	InitRetryDelay  string `yaml:"init_retry_delay"`
}

type TTSConfig struct {
	BaseURL string `yaml:"base_url"`
}

type TranslateConfig struct {
	BaseURL string `yaml:"base_url"`
}

type ConnectivityConfig struct {
	ProbeTarget       string   `yaml:"probe_target"`
	ProbeTimeoutSec   int      `yaml:"probe_timeout_sec"`
	WiredInterfaces   []string `yaml:"wired_interfaces"`
	CellularInterface string   `yaml:"cellular_interface"`
}

type HealthConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.ProbeURL == "" {
		c.Server.ProbeURL = c.Server.URL
	}
	if c.Server.ProbeAttempts == 0 {
		c.Server.ProbeAttempts = 10
	}
	if c.Server.ProbeWait == "" {
		c.Server.ProbeWait = "30s"
	}
	if c.Server.ReconnectBackoff == "" {
		c.Server.ReconnectBackoff = "1s"
	}
	if c.Server.ReconnectMaxBackoff == "" {
		c.Server.ReconnectMaxBackoff = "30s"
	}
	if c.Audio.AssetDir == "" {
		c.Audio.AssetDir = "./assets"
	}
	if c.Audio.WorkDir == "" {
		c.Audio.WorkDir = "./work"
	}
	if c.Audio.DeviceHint == "" {
		c.Audio.DeviceHint = "usb"
	}
	if c.Audio.MaxInitAttempts == 0 {
		c.Audio.MaxInitAttempts = 5
	}
	if c.Audio.InitRetryDelay == "" {
		c.Audio.InitRetryDelay = "2s"
	}
	if c.Connectivity.ProbeTarget == "" {
		c.Connectivity.ProbeTarget = "8.8.8.8"
	}
	if c.Connectivity.ProbeTimeoutSec == 0 {
		c.Connectivity.ProbeTimeoutSec = 5
	}
	if len(c.Connectivity.WiredInterfaces) == 0 {
		c.Connectivity.WiredInterfaces = []string{"eth0", "wlan0"}
	}
	if c.Connectivity.CellularInterface == "" {
		c.Connectivity.CellularInterface = "ppp0"
	}
	if c.Health.Addr == "" {
		c.Health.Addr = ":9090"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	if c.Siren.ID == "" {
		return fmt.Errorf("siren.id is required")
	}
	if c.Server.URL == "" {
		return fmt.Errorf("server.url is required")
	}
	if c.TTS.BaseURL == "" {
		return fmt.Errorf("tts.base_url is required")
	}
	return nil
}
