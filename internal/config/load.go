package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load reads .env, then the optional YAML file at path, then environment overrides.
// A missing YAML file is fine; settings can come from the environment alone.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config yaml: %w", err)
			}
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Paths.Input, "INPUT_DIR")
	setString(&cfg.Paths.Output, "OUTPUT_DIR")
	setString(&cfg.Paths.Logs, "LOG_DIR")
	setString(&cfg.Paths.Temp, "TEMP_DIR")
	setString(&cfg.Paths.Archived, "ARCHIVE_DIR")

	setString(&cfg.Whisper.Backend, "WHISPER_BACKEND")
	setString(&cfg.Whisper.Model, "WHISPER_MODEL")
	setString(&cfg.Whisper.ModelPath, "WHISPER_MODEL_PATH")
	setString(&cfg.Whisper.Binary, "WHISPER_BINARY")
	setString(&cfg.Whisper.Device, "WHISPER_DEVICE")
	setString(&cfg.Whisper.APIURL, "WHISPER_API_URL")
	setString(&cfg.Whisper.APIKey, "WHISPER_API_KEY")
	setList(&cfg.Whisper.Languages, "TRANSCRIBE_LANGUAGES")
	if err := setInt(&cfg.Whisper.Threads, "WHISPER_THREADS"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Whisper.Timeout, "WHISPER_TIMEOUT"); err != nil {
		return err
	}

	setString(&cfg.Audio.FFmpegBinary, "FFMPEG_BINARY")

	setString(&cfg.LLM.Provider, "LLM_PROVIDER")
	if err := setDuration(&cfg.LLM.Timeout, "LLM_TIMEOUT"); err != nil {
		return err
	}

	setString(&cfg.Databricks.Token, "DATABRICKS_TOKEN")
	setString(&cfg.Databricks.BaseURL, "DATABRICKS_BASE_URL")
	setString(&cfg.Databricks.Model, "DATABRICKS_MODEL")

	setList(&cfg.Gemini.APIKeys, "GEMINI_API_KEYS")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")

	if v := os.Getenv("OUTPUT_DOCX"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OUTPUT_DOCX: %w", err)
		}
		cfg.Output.Docx = b
	}

	setString(&cfg.Storage.DBPath, "DB_PATH")
	if err := setInt(&cfg.Watch.MaxConcurrent, "WATCH_MAX_CONCURRENT"); err != nil {
		return err
	}

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}
