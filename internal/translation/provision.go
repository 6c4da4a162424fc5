package translation

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"
)

// Provisioner installs the engine's language pair before any translation.
type Provisioner struct {
	command []string
}

// NewProvisioner creates a provisioner that runs `<command...> <from> <to>`.
func NewProvisioner(command []string) *Provisioner {
	return &Provisioner{command: command}
}

// Setup runs the provisioning command to completion.
func (p *Provisioner) Setup(ctx context.Context, from, to string) error {
	if len(p.command) == 0 {
		return fmt.Errorf("engine setup: no setup command configured")
	}

	args := append(append([]string{}, p.command[1:]...), from, to)
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, p.command[0], args...)
	cmd.Env = append(os.Environ(), "PYTHONIOENCODING=utf-8")
	cmd.Stdout = &out
	cmd.Stderr = &out

	log.Info().Str("from", from).Str("to", to).Msg("Provisioning translation engine")
	err := cmd.Run()

	sc := bufio.NewScanner(&out)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			log.Info().Str("setup", line).Msg("Engine setup output")
		}
	}

	if err != nil {
		return fmt.Errorf("engine setup %s-%s: %w", from, to, err)
	}
	return nil
}
