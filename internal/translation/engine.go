// Package translation is the only caller of the external translation engine.
package translation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"loc-translator/internal/textutil"
)

var (
	// ErrEngineUnavailable means the engine could not be started or exited
	// abnormally. The group that made the call fails as a unit.
	ErrEngineUnavailable = errors.New("translation engine unavailable")
	// ErrEngineTimeout means a single engine call exceeded its time budget.
	ErrEngineTimeout = errors.New("translation engine timed out")
)

// Result is the raw output of one engine invocation.
type Result struct {
	// Text is the primary output, decoded as UTF-8.
	Text string
	// Diagnostics is whatever the engine wrote on its side channel.
	Diagnostics string
}

// Engine translates newline-delimited text from one language to another.
type Engine interface {
	Translate(ctx context.Context, text, from, to string) (Result, error)
}

// InputMode selects how the text reaches the engine process.
type InputMode string

const (
	// InputArg passes the text as a command-line argument. Texts longer than
	// maxArgLen still go through stdin.
	InputArg InputMode = "arg"
	// InputStdin writes the text to stdin and passes "-" as the argument.
	InputStdin InputMode = "stdin"
)

// maxArgLen stays under the kernel's per-argument limit (MAX_ARG_STRLEN,
// 128 KiB including the terminating NUL).
const maxArgLen = 128*1024 - 1024

// ParseInputMode maps a config value to an InputMode. The default is stdin.
func ParseInputMode(s string) (InputMode, error) {
	switch InputMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", InputStdin:
		return InputStdin, nil
	case InputArg:
		return InputArg, nil
	}
	return "", fmt.Errorf("unknown engine input mode %q", s)
}

// ArgosEngine runs an Argos Translate wrapper script as a child process:
// `<command...> <text> <from> <to>`, stdout is the translation and stderr
// the diagnostics. A text argument of "-" means the text is on stdin, see
// scripts/translate.py.
type ArgosEngine struct {
	command []string
	input   InputMode
	env     []string
}

// NewArgosEngine creates an engine that runs command (program plus leading
// arguments, typically the interpreter and script path).
func NewArgosEngine(command []string, input InputMode, deviceType string) *ArgosEngine {
	env := os.Environ()
	if deviceType != "" {
		env = append(env, "ARGOS_DEVICE_TYPE="+deviceType)
	}
	// Force UTF-8 on the Python side regardless of the host locale.
	env = append(env, "PYTHONIOENCODING=utf-8")
	return &ArgosEngine{command: command, input: input, env: env}
}

// Translate runs one engine process. The process is killed when ctx ends.
func (e *ArgosEngine) Translate(ctx context.Context, text, from, to string) (Result, error) {
	if len(e.command) == 0 {
		return Result{}, fmt.Errorf("%w: no engine command configured", ErrEngineUnavailable)
	}

	textArg := text
	var stdin io.Reader
	if e.input == InputStdin || len(text) > maxArgLen {
		textArg = "-"
		stdin = strings.NewReader(text)
	}

	args := append(append([]string{}, e.command[1:]...), textArg, from, to)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, e.command[0], args...)
	cmd.Env = e.env
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{
		Text:        strings.ToValidUTF8(stdout.String(), "\uFFFD"),
		Diagnostics: strings.TrimSpace(strings.ToValidUTF8(stderr.String(), "\uFFFD")),
	}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return res, fmt.Errorf("%w: exit status %d: %s", ErrEngineUnavailable,
			exitErr.ExitCode(), textutil.Truncate(res.Diagnostics, 200))
	}
	return res, fmt.Errorf("%w: %w", ErrEngineUnavailable, err)
}
