package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all application configuration
type Config struct {
	// Core settings
	WorkDir     string `yaml:"work_dir"`
	Concurrency int    `yaml:"concurrency"`

	// FFmpeg settings
	FFmpeg FFmpegConfig `yaml:"ffmpeg"`

	// Frame sampling settings
	Sampling SamplingConfig `yaml:"sampling"`

	// Scene detection settings
	Detection DetectionConfig `yaml:"detection"`

	// Text style settings
	Styles StylesConfig `yaml:"styles"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ProbePath  string `yaml:"probe_path"`
	Threads    int    `yaml:"threads"`
}

type SamplingConfig struct {
	IntervalSec    float64 `yaml:"interval_s"`
	MinSamples     int     `yaml:"min_samples"`
	MaxSamples     int     `yaml:"max_samples"`
	TargetSamples  int     `yaml:"target_samples"`
	RasterMaxEdge  int     `yaml:"raster_max_edge"`
	ThumbMaxEdge   int     `yaml:"thumb_max_edge"`
	SeekTimeoutSec float64 `yaml:"seek_timeout_s"`
	JPEGQuality    int     `yaml:"jpeg_quality"`
}

type DetectionConfig struct {
	Threshold   float64 `yaml:"threshold"`
	MinSceneSec float64 `yaml:"min_scene_s"`
	BudgetSec   float64 `yaml:"budget_s"`
}

// StylesConfig groups the per-class text style defaults and the fallback
// overlay texts used when no external label source supplies them.
type StylesConfig struct {
	FontFamily string      `yaml:"font_family"`
	FontColor  string      `yaml:"font_color"`
	HookText   string      `yaml:"hook_text"`
	CTAText    string      `yaml:"cta_text"`
	Hook       StyleConfig `yaml:"hook"`
	Numbered   StyleConfig `yaml:"numbered"`
	CTA        StyleConfig `yaml:"cta"`
}

type StyleConfig struct {
	FontSize      int    `yaml:"font_size"`
	FontWeight    string `yaml:"font_weight"`
	Emoji         string `yaml:"emoji"`
	EmojiPosition string `yaml:"emoji_position"`
	Position      string `yaml:"position"`
	Alignment     string `yaml:"alignment"`
}

// Load reads configuration from file or returns defaults
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// TemplatesDir returns the directory that stored templates live in.
func (c *Config) TemplatesDir() string {
	return filepath.Join(c.WorkDir, "templates")
}

func defaultConfig() *Config {
	return &Config{
		WorkDir:     "./work",
		Concurrency: 2,
		FFmpeg: FFmpegConfig{
			BinaryPath: "ffmpeg",
			ProbePath:  "ffprobe",
			Threads:    0,
		},
		Sampling: SamplingConfig{
			IntervalSec:    1.0,
			MinSamples:     10,
			MaxSamples:     30,
			TargetSamples:  0,
			RasterMaxEdge:  720,
			ThumbMaxEdge:   320,
			SeekTimeoutSec: 5.0,
			JPEGQuality:    80,
		},
		Detection: DetectionConfig{
			Threshold:   0.3,
			MinSceneSec: 1.5,
			BudgetSec:   60.0,
		},
		Styles: StylesConfig{
			FontFamily: "Montserrat",
			FontColor:  "#FFFFFF",
			HookText:   "Watch till the end",
			CTAText:    "Save this for later",
			Hook: StyleConfig{
				FontSize:      42,
				FontWeight:    "bold",
				Emoji:         "✨",
				EmojiPosition: "both",
				Position:      "center",
				Alignment:     "center",
			},
			Numbered: StyleConfig{
				FontSize:      32,
				FontWeight:    "semibold",
				Emoji:         "📍",
				EmojiPosition: "leading",
				Position:      "top",
				Alignment:     "left",
			},
			CTA: StyleConfig{
				FontSize:      36,
				FontWeight:    "bold",
				Emoji:         "🔖",
				EmojiPosition: "trailing",
				Position:      "center",
				Alignment:     "center",
			},
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./clipform.yaml",
		"./clipform.yml",
		filepath.Join(os.Getenv("HOME"), ".clipform", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return defaultConfig()
}
