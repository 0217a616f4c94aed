package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Ideas     IdeasConfig     `yaml:"ideas"`
	Script    ScriptConfig    `yaml:"script"`
	Narration NarrationConfig `yaml:"narration"`
	Footage   FootageConfig   `yaml:"footage"`
	Video     VideoConfig     `yaml:"video"`
	Upload    UploadConfig    `yaml:"upload"`
	Jobs      JobsConfig      `yaml:"jobs"`
	Paths     PathsConfig     `yaml:"paths"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type IdeasConfig struct {
	BatchSize     int      `yaml:"batch_size"`
	Models        []string `yaml:"models"`
	Temperature   float64  `yaml:"temperature"`
	TrendingPosts int      `yaml:"trending_posts"`
}

type ScriptConfig struct {
	Models        []string `yaml:"models"`
	Temperature   float64  `yaml:"temperature"`
	RetryAttempts int      `yaml:"retry_attempts"`
	Style         string   `yaml:"style"`
	Audience      string   `yaml:"audience"`
}

type NarrationConfig struct {
	VoiceID       string `yaml:"voice_id"`
	MaxChunkChars int    `yaml:"max_chunk_chars"`
}

type FootageConfig struct {
	PerPage       int `yaml:"per_page"`
	MaxClips      int `yaml:"max_clips"`
	MinClipsFound int `yaml:"min_clips_found"`
}

type VideoConfig struct {
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	MaxDurationSec int `yaml:"max_duration_sec"`
}

type UploadConfig struct {
	Auto       bool   `yaml:"auto"`
	Visibility string `yaml:"visibility"`
	CategoryID string `yaml:"category_id"`
}

type JobsConfig struct {
	RetentionSec int `yaml:"retention_sec"`
}

type PathsConfig struct {
	Output     string `yaml:"output"`
	Scripts    string `yaml:"scripts"`
	Audio      string `yaml:"audio"`
	Video      string `yaml:"video"`
	Thumbnails string `yaml:"thumbnails"`
	Data       string `yaml:"data"`
}

// Default returns the built-in configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Ideas: IdeasConfig{
			BatchSize:     5,
			Models:        []string{"gpt-3.5-turbo", "gpt-4", "gpt-4o"},
			Temperature:   0.7,
			TrendingPosts: 5,
		},
		Script: ScriptConfig{
			Models:        []string{"gpt-3.5-turbo", "gpt-4", "gpt-4o"},
			Temperature:   0.7,
			RetryAttempts: 3,
			Style:         "energetic and engaging",
			Audience:      "general",
		},
		Narration: NarrationConfig{
			VoiceID:       "21m00Tcm4TlvDq8ikWAM",
			MaxChunkChars: 4000,
		},
		Footage: FootageConfig{
			PerPage:       3,
			MaxClips:      6,
			MinClipsFound: 3,
		},
		Video: VideoConfig{
			Width:          720,
			Height:         1280,
			MaxDurationSec: 60,
		},
		Upload: UploadConfig{
			Auto:       true,
			Visibility: "private",
			CategoryID: "27",
		},
		Jobs: JobsConfig{RetentionSec: 60},
		Paths: PathsConfig{
			Output:     "output",
			Scripts:    "scripts",
			Audio:      "audio",
			Video:      "video_clips",
			Thumbnails: "thumbnails",
			Data:       "data",
		},
	}
}

// Load reads the config file at path. If the file does not exist, the
// defaults are written back so the operator has something to edit.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg := Default()
		if werr := Save(path, cfg); werr != nil {
			return nil, fmt.Errorf("write default config: %w", werr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Dirs lists every directory the pipeline writes into.
func (c *Config) Dirs() []string {
	return []string{
		c.Paths.Output,
		c.Paths.Scripts,
		c.Paths.Audio,
		c.Paths.Video,
		c.Paths.Thumbnails,
		c.Paths.Data,
	}
}
