package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	// EngineCommand is the interpreter or binary running the engine scripts.
	EngineCommand string
	EngineScript  string
	SetupScript   string
	// EngineInput is "arg" or "stdin".
	EngineInput     string
	ArgosDeviceType string
	EngineTimeout   time.Duration
	EngineRetries   int
	// MaxConcurrentEngineCalls also sets the number of batch groups;
	// 0 means one per CPU.
	MaxConcurrentEngineCalls int
	WorkerCount              int
	SourceLang               string
	TargetLang               string
	LocalizationDir          string
	DatabaseURL              string
	LogLevel                 string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, using environment variables")
	}

	return &Config{
		EngineCommand:            getEnv("ENGINE_COMMAND", "python"),
		EngineScript:             getEnv("ENGINE_SCRIPT", "scripts/translate.py"),
		SetupScript:              getEnv("SETUP_SCRIPT", "scripts/setup_translation.py"),
		EngineInput:              getEnv("ENGINE_INPUT", "stdin"),
		ArgosDeviceType:          getEnv("ARGOS_DEVICE_TYPE", "auto"),
		EngineTimeout:            getEnvDuration("ENGINE_TIMEOUT", 30*time.Minute),
		EngineRetries:            getEnvInt("ENGINE_MAX_RETRIES", 2),
		MaxConcurrentEngineCalls: getEnvInt("MAX_CONCURRENT_ENGINE_CALLS", 3),
		WorkerCount:              getEnvInt("WORKER_COUNT", 8),
		SourceLang:               getEnv("SOURCE_LANG", "en"),
		TargetLang:               getEnv("TARGET_LANG", "es"),
		LocalizationDir:          getEnv("LOCALIZATION_DIR", "localization"),
		DatabaseURL:              getEnv("DATABASE_URL", ""),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
	}
}

// EngineArgv returns the engine command line without the per-call arguments.
func (c *Config) EngineArgv() []string {
	return commandLine(c.EngineCommand, c.EngineScript)
}

// SetupArgv returns the provisioning command line without the language pair.
func (c *Config) SetupArgv() []string {
	return commandLine(c.EngineCommand, c.SetupScript)
}

func commandLine(command, script string) []string {
	argv := strings.Fields(command)
	if script != "" {
		argv = append(argv, script)
	}
	return argv
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid integer, using default")
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Invalid duration, using default")
		return fallback
	}
	return d
}
