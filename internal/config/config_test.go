package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// chdir switches the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"ENGINE_COMMAND", "ENGINE_SCRIPT", "SETUP_SCRIPT", "ENGINE_INPUT", "MAX_CONCURRENT_ENGINE_CALLS", "ENGINE_TIMEOUT", "DATABASE_URL"} {
		t.Setenv(k, "")
	}
	chdir(t, t.TempDir())

	cfg := Load()
	assert.Equal(t, []string{"python", "scripts/translate.py"}, cfg.EngineArgv())
	assert.Equal(t, []string{"python", "scripts/setup_translation.py"}, cfg.SetupArgv())
	assert.Equal(t, "stdin", cfg.EngineInput)
	assert.Equal(t, 3, cfg.MaxConcurrentEngineCalls)
	assert.Equal(t, 30*time.Minute, cfg.EngineTimeout)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENGINE_COMMAND", "uv run python")
	t.Setenv("ENGINE_SCRIPT", "/opt/argos/translate.py")
	t.Setenv("MAX_CONCURRENT_ENGINE_CALLS", "0")
	t.Setenv("ENGINE_TIMEOUT", "90s")
	t.Setenv("WORKER_COUNT", "many")

	cfg := Load()
	assert.Equal(t, []string{"uv", "run", "python", "/opt/argos/translate.py"}, cfg.EngineArgv())
	assert.Equal(t, 0, cfg.MaxConcurrentEngineCalls)
	assert.Equal(t, 90*time.Second, cfg.EngineTimeout)
	assert.Equal(t, 8, cfg.WorkerCount)
}

func TestCommandLineWithoutScript(t *testing.T) {
	assert.Equal(t, []string{"argos-wrapper"}, commandLine("argos-wrapper", ""))
}
