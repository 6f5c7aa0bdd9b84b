package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/san-kum/windsim/internal/turbine"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr     = ":8080"
	DefaultDataDir  = ".windsim"
	DefaultFPS      = 30
	DefaultFrames   = 30
	DefaultTheme    = "ocean"
	DefaultLogLevel = "info"
	DefaultSamples  = 45
)

type Config struct {
	Turbine   turbine.Inputs  `yaml:"turbine"`
	Animation AnimationConfig `yaml:"animation"`
	Server    ServerConfig    `yaml:"server"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	DataDir   string          `yaml:"data_dir"`
	LogLevel  string          `yaml:"log_level"`
	LogFile   string          `yaml:"log_file"`
}

type AnimationConfig struct {
	Frames    int `yaml:"frames"`
	FPS       int `yaml:"fps"`
	FanBlades int `yaml:"fan_blades"`
	ImageSize int `yaml:"image_size"`
}

type ServerConfig struct {
	Addr      string  `yaml:"addr"`
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type DashboardConfig struct {
	Theme        string `yaml:"theme"`
	CurveSamples int    `yaml:"curve_samples"`
}

func DefaultConfig() *Config {
	return &Config{
		Turbine: turbine.DefaultInputs(),
		Animation: AnimationConfig{
			Frames:    DefaultFrames,
			FPS:       DefaultFPS,
			FanBlades: 3,
			ImageSize: 320,
		},
		Server: ServerConfig{
			Addr:      DefaultAddr,
			RateLimit: 20,
			RateBurst: 40,
		},
		Dashboard: DashboardConfig{
			Theme:        DefaultTheme,
			CurveSamples: DefaultSamples,
		},
		DataDir:  DefaultDataDir,
		LogLevel: DefaultLogLevel,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func Save(path string, cfg *Config) error {
	data, err := cfg.YAML()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadEnv reads KEY=VALUE pairs from the given .env files into the process
// environment. Missing files are ignored; existing variables are kept.
func LoadEnv(files ...string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides fields from WINDSIM_* environment variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("WINDSIM_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("WINDSIM_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("WINDSIM_LOG_LEVEL"); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("WINDSIM_LOG_FILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("WINDSIM_THEME"); v != "" {
		c.Dashboard.Theme = v
	}
	if v, err := strconv.Atoi(os.Getenv("WINDSIM_FPS")); err == nil && v > 0 {
		c.Animation.FPS = v
	}
	if v, err := strconv.ParseFloat(os.Getenv("WINDSIM_RATE_LIMIT"), 64); err == nil && v > 0 {
		c.Server.RateLimit = v
	}
}

// Normalize clamps the turbine inputs and fills zero animation settings.
func (c *Config) Normalize() {
	c.Turbine = c.Turbine.Clamp()
	def := DefaultConfig()
	if c.Animation.Frames <= 0 {
		c.Animation.Frames = def.Animation.Frames
	}
	if c.Animation.FPS <= 0 {
		c.Animation.FPS = def.Animation.FPS
	}
	if c.Animation.FanBlades <= 0 {
		c.Animation.FanBlades = def.Animation.FanBlades
	}
	if c.Animation.ImageSize <= 0 {
		c.Animation.ImageSize = def.Animation.ImageSize
	}
	if c.Dashboard.CurveSamples < 2 {
		c.Dashboard.CurveSamples = def.Dashboard.CurveSamples
	}
	if c.Server.RateBurst <= 0 {
		c.Server.RateBurst = def.Server.RateBurst
	}
}
