package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Quotes   QuotesConfig   `yaml:"quotes"`
	Render   RenderConfig   `yaml:"render"`
	Audio    AudioConfig    `yaml:"audio"`
	Video    VideoConfig    `yaml:"video"`
	Metadata MetadataConfig `yaml:"metadata"`
	Upload   UploadConfig   `yaml:"upload"`
	Paths    PathsConfig    `yaml:"paths"`
}

type QuotesConfig struct {
	Count            int      `yaml:"count"`
	MaxAttempts      int      `yaml:"max_attempts"`
	Model            string   `yaml:"model"`
	Endpoint         string   `yaml:"endpoint"`
	Temperature      float64  `yaml:"temperature"`
	Themes           []string `yaml:"themes"`
	CuratedSubreddit string   `yaml:"curated_subreddit"`
}

type RenderConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FontPath        string  `yaml:"font_path"`
	QuoteFontSize   float64 `yaml:"quote_font_size"`
	TitleFontSize   float64 `yaml:"title_font_size"`
	MaxCharsPerLine int     `yaml:"max_chars_per_line"`
	LineSpacing     float64 `yaml:"line_spacing"`
	NoiseBlobs      int     `yaml:"noise_blobs"`
}

type AudioConfig struct {
	Extensions []string `yaml:"extensions"`
}

type VideoConfig struct {
	FPS              int    `yaml:"fps"`
	CRF              int    `yaml:"crf"`
	Preset           string `yaml:"preset"`
	DurationPerQuote int    `yaml:"duration_per_quote"`
	AudioBitrate     string `yaml:"audio_bitrate"`
}

type MetadataConfig struct {
	Model         string `yaml:"model"`
	TitleMaxChars int    `yaml:"title_max_chars"`
	TagsCount     int    `yaml:"tags_count"`
}

type UploadConfig struct {
	Visibility        string `yaml:"visibility"`
	CategoryID        string `yaml:"category_id"`
	NotifySubscribers bool   `yaml:"notify_subscribers"`
	MadeForKids       bool   `yaml:"made_for_kids"`
	DefaultLanguage   string `yaml:"default_language"`
	ClientSecretFile  string `yaml:"client_secret_file"`
	TokenFile         string `yaml:"token_file"`
}

type PathsConfig struct {
	Audio   string `yaml:"audio"`
	Quotes  string `yaml:"quotes"`
	Images  string `yaml:"images"`
	Frames  string `yaml:"frames"`
	Output  string `yaml:"output"`
	Logs    string `yaml:"logs"`
	History string `yaml:"history"`
}

// Load reads config.yaml and returns a Config struct.
// A missing file is not an error — the built-in defaults are used.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when config.yaml is absent.
func Default() *Config {
	return &Config{
		Quotes: QuotesConfig{
			Count:       9,
			MaxAttempts: 5,
			Model:       "gpt-4o-mini",
			Endpoint:    "https://api.openai.com/v1/chat/completions",
			Temperature: 1.0,
			Themes: []string{
				"classic horror", "modern horror", "psychological horror",
				"slasher films", "supernatural horror", "zombie films",
				"vampire movies", "ghost stories",
			},
			CuratedSubreddit: "horror",
		},
		Render: RenderConfig{
			Width:           1080,
			Height:          1920,
			QuoteFontSize:   60,
			TitleFontSize:   48,
			MaxCharsPerLine: 25,
			LineSpacing:     100,
			NoiseBlobs:      100,
		},
		Audio: AudioConfig{
			Extensions: []string{".mp3", ".wav", ".m4a"},
		},
		Video: VideoConfig{
			FPS:              30,
			CRF:              23,
			Preset:           "medium",
			DurationPerQuote: 10,
			AudioBitrate:     "192k",
		},
		Metadata: MetadataConfig{
			Model:         "gpt-4o-mini",
			TitleMaxChars: 70,
			TagsCount:     15,
		},
		Upload: UploadConfig{
			Visibility:       "private",
			CategoryID:       "24",
			DefaultLanguage:  "en",
			ClientSecretFile: "client_secret.json",
			TokenFile:        "token.json",
		},
		Paths: PathsConfig{
			Audio:   "audio",
			Quotes:  "quotes",
			Images:  "images",
			Frames:  "frames",
			Output:  "output",
			Logs:    "logs",
			History: "quotes_history.txt",
		},
	}
}
