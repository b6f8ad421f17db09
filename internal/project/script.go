package project

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/rs/zerolog"
)

// ScriptRunner runs the project initialization script.
type ScriptRunner interface {
	RunInitScript(ctx context.Context, dir string) error
}

// ExecRunner runs the init script as a child process sharing the CLI's
// standard streams.
type ExecRunner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger zerolog.Logger
}

// NewExecRunner returns a runner attached to the process's standard streams.
func NewExecRunner(logger zerolog.Logger) *ExecRunner {
	return &ExecRunner{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Logger: logger,
	}
}

// RunInitScript runs the init script with the package manager detected in dir.
func (r *ExecRunner) RunInitScript(ctx context.Context, dir string) error {
	pm := DetectPackageManager(dir)

	r.Logger.Debug().
		Str("dir", dir).
		Str("package_manager", pm.Name).
		Strs("command", pm.RunScript).
		Msg("running init script")

	cmd := exec.CommandContext(ctx, pm.RunScript[0], pm.RunScript[1:]...)
	cmd.Dir = dir
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to run initialization script: %w", err)
	}
	return nil
}
