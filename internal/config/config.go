package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Ollama  OllamaConfig  `mapstructure:"ollama"`
	Improve ImproveConfig `mapstructure:"improve"`
	Hotkey  HotkeyConfig  `mapstructure:"hotkey"`
	Log     LogConfig     `mapstructure:"log"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type OllamaConfig struct {
	Provider    string  `mapstructure:"provider"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type ImproveConfig struct {
	PromptTemplate  string `mapstructure:"prompt_template"`
	SystemPrompt    string `mapstructure:"system_prompt"`
	ReplaceOriginal bool   `mapstructure:"replace_original"`
	Prefix          string `mapstructure:"prefix"`
	Streaming       bool   `mapstructure:"streaming"`
	SpeedProfile    string `mapstructure:"speed_profile"`
	ShowGenerating  bool   `mapstructure:"show_generating"`
	GeneratingText  string `mapstructure:"generating_text"`
}

type HotkeyConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Chord   string `mapstructure:"chord"`
}

type LogConfig struct {
	File string `mapstructure:"file"`
}

// SelectionToken is the placeholder the prompt template must contain; it is
// replaced with the selected text when the prompt is rendered.
const SelectionToken = "{{selection}}"

// Store owns the live configuration record. It is created once at startup
// with defaults overlaid by the persisted file, passed by reference to every
// component that needs it, and written back after every change.
type Store struct {
	Config

	v *viper.Viper
}

// Dir returns the config directory path.
// Resolution order: $REWORD_CONFIG_DIR > ~/.reword
func Dir() string {
	if dir := os.Getenv("REWORD_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join("/tmp", "reword-config")
	}
	return filepath.Join(home, ".reword")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "127.0.0.1:8750")
	v.SetDefault("ollama.provider", "ollama")
	v.SetDefault("ollama.base_url", "http://localhost:11434")
	v.SetDefault("ollama.model", "llama3.2:latest")
	v.SetDefault("ollama.temperature", 0.5)
	v.SetDefault("ollama.max_tokens", 1024)
	v.SetDefault("improve.prompt_template",
		"Please improve the following text. Keep its meaning and language, "+
			"fix grammar and clarity, and reply with the improved text only:\n\n"+SelectionToken)
	v.SetDefault("improve.system_prompt", "You are a careful copy editor.")
	v.SetDefault("improve.replace_original", false)
	v.SetDefault("improve.prefix", "✨ Improved version:\n")
	v.SetDefault("improve.streaming", true)
	v.SetDefault("improve.speed_profile", "medium")
	v.SetDefault("improve.show_generating", true)
	v.SetDefault("improve.generating_text", "✍️ improving…")
	v.SetDefault("hotkey.enabled", false)
	v.SetDefault("hotkey.chord", "Ctrl+Shift+I")
	v.SetDefault("log.file", "")
}

// Load loads configuration from config.yaml in the standard locations,
// overlaid on the defaults. A missing file is not an error; defaults apply.
func Load() (*Store, error) {
	return load("")
}

// LoadDir loads configuration from the given directory only. Used by tests
// and by hosts that manage their own config location.
func LoadDir(dir string) (*Store, error) {
	return load(dir)
}

func load(dir string) (*Store, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	} else {
		v.AddConfigPath("./")
		v.AddConfigPath(Dir())
	}

	// Enable environment variable override with REWORD_ prefix
	v.SetEnvPrefix("REWORD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	s := &Store{v: v}
	if err := v.Unmarshal(&s.Config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := s.Config.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Default returns an in-memory store holding only the defaults. Nothing is
// read from or written to disk until Set is called.
func Default() *Store {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)
	s := &Store{v: v}
	if err := v.Unmarshal(&s.Config); err != nil {
		panic("reword: invalid default configuration: " + err.Error())
	}
	return s
}

// Set updates one field by its config key, re-validates the whole record,
// and persists it. The embedded Config is updated in place, so components
// holding a reference observe the change immediately.
func (s *Store) Set(key string, value any) error {
	previous := s.v.Get(key)
	s.v.Set(key, value)
	if err := s.v.Unmarshal(&s.Config); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := s.Config.Validate(); err != nil {
		s.v.Set(key, previous)
		if uerr := s.v.Unmarshal(&s.Config); uerr != nil {
			return fmt.Errorf("failed to restore config after invalid change: %w", uerr)
		}
		return err
	}
	return s.Save()
}

// Save writes the full record to the file it was loaded from, or to the
// default location when no file existed yet.
func (s *Store) Save() error {
	path := s.v.ConfigFileUsed()
	if path == "" {
		dir := Dir()
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	if err := s.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the record for values the pipeline cannot work with.
func (c *Config) Validate() error {
	if c.Ollama.Temperature < 0 || c.Ollama.Temperature > 1 {
		return fmt.Errorf("ollama.temperature must be between 0 and 1, got %v", c.Ollama.Temperature)
	}
	if c.Ollama.MaxTokens <= 0 {
		return fmt.Errorf("ollama.max_tokens must be positive, got %d", c.Ollama.MaxTokens)
	}
	switch c.Improve.SpeedProfile {
	case "fast", "medium", "slow":
	default:
		return fmt.Errorf("improve.speed_profile must be fast, medium or slow, got %q", c.Improve.SpeedProfile)
	}
	if !strings.Contains(c.Improve.PromptTemplate, SelectionToken) {
		return fmt.Errorf("improve.prompt_template must contain %s", SelectionToken)
	}
	return nil
}
