package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Transcription backends.
const (
	BackendWhisperCpp = "whisper-cpp"
	BackendOpenAI     = "openai"
)

// LLM providers.
const (
	ProviderDatabricks = "databricks"
	ProviderGemini     = "gemini"
)

type Config struct {
	Paths      PathsConfig      `yaml:"paths"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	Audio      AudioConfig      `yaml:"audio"`
	LLM        LLMConfig        `yaml:"llm"`
	Databricks DatabricksConfig `yaml:"databricks"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	Output     OutputConfig     `yaml:"output"`
	Storage    StorageConfig    `yaml:"storage"`
	Watch      WatchConfig      `yaml:"watch"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type PathsConfig struct {
	Input    string `yaml:"input"`
	Output   string `yaml:"output"`
	Logs     string `yaml:"logs"`
	Temp     string `yaml:"temp"`
	Archived string `yaml:"archived"`
}

type WhisperConfig struct {
	Backend   string   `yaml:"backend"`
	Model     string   `yaml:"model"`
	ModelPath string   `yaml:"model_path"`
	Binary    string   `yaml:"binary"`
	Device    string   `yaml:"device"`
	Threads   int      `yaml:"threads"`
	Languages []string `yaml:"languages"`
	APIURL    string   `yaml:"api_url"`
	APIKey    string   `yaml:"api_key"`
	// Timeout bounds one request to the openai backend.
	Timeout time.Duration `yaml:"timeout"`
}

type AudioConfig struct {
	FFmpegBinary string `yaml:"ffmpeg_binary"`
}

type LLMConfig struct {
	Provider string        `yaml:"provider"`
	Timeout  time.Duration `yaml:"timeout"`
}

type DatabricksConfig struct {
	Token   string `yaml:"token"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

type GeminiConfig struct {
	APIKeys []string `yaml:"api_keys"`
	Model   string   `yaml:"model"`
}

type OutputConfig struct {
	Docx bool `yaml:"docx"`
}

type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

type WatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// StorageDisabled is the db_path value that turns run history off.
const StorageDisabled = "off"

// Validate fills defaults and checks required settings.
func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		c.Paths.Input = "in"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "out"
	}
	if c.Paths.Logs == "" {
		c.Paths.Logs = "logs"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = filepath.Join(c.Paths.Output, "tmp")
	}

	if c.Whisper.Backend == "" {
		c.Whisper.Backend = BackendWhisperCpp
	}
	if c.Whisper.Model == "" {
		c.Whisper.Model = "large-v3"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = filepath.Join("models", "ggml-"+c.Whisper.Model+".bin")
	}
	if c.Whisper.Binary == "" {
		c.Whisper.Binary = "whisper-cli"
	}
	if c.Whisper.Device == "" {
		c.Whisper.Device = "mps"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 8
	}
	if c.Whisper.Timeout == 0 {
		c.Whisper.Timeout = 10 * time.Minute
	}
	if len(c.Whisper.Languages) == 0 {
		c.Whisper.Languages = []string{"hi", "en"}
	}
	if c.Audio.FFmpegBinary == "" {
		c.Audio.FFmpegBinary = "ffmpeg"
	}

	if c.LLM.Provider == "" {
		c.LLM.Provider = ProviderDatabricks
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 10 * time.Minute
	}
	if c.Databricks.Model == "" {
		c.Databricks.Model = "databricks/databricks-claude-opus-4-1"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}

	if c.Storage.DBPath == "" {
		c.Storage.DBPath = filepath.Join(c.Paths.Output, "history.db")
	}
	if c.Watch.MaxConcurrent <= 0 {
		c.Watch.MaxConcurrent = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	switch c.Whisper.Backend {
	case BackendWhisperCpp:
	case BackendOpenAI:
		if c.Whisper.APIURL == "" {
			return fmt.Errorf("whisper.api_url is required for the %s backend", BackendOpenAI)
		}
	default:
		return fmt.Errorf("whisper.backend must be %s or %s, got %q", BackendWhisperCpp, BackendOpenAI, c.Whisper.Backend)
	}

	for _, lang := range c.Whisper.Languages {
		if strings.TrimSpace(lang) == "" {
			return fmt.Errorf("whisper.languages must not contain empty entries")
		}
	}

	switch c.LLM.Provider {
	case ProviderDatabricks:
		if c.Databricks.Token == "" {
			return fmt.Errorf("DATABRICKS_TOKEN is required")
		}
		if c.Databricks.BaseURL == "" {
			return fmt.Errorf("DATABRICKS_BASE_URL is required")
		}
	case ProviderGemini:
		if len(c.Gemini.APIKeys) == 0 {
			return fmt.Errorf("GEMINI_API_KEYS is required")
		}
	default:
		return fmt.Errorf("llm.provider must be %s or %s, got %q", ProviderDatabricks, ProviderGemini, c.LLM.Provider)
	}

	return nil
}

// StorageEnabled reports whether run history should be recorded.
func (c *Config) StorageEnabled() bool {
	return c.Storage.DBPath != StorageDisabled
}
