package compose

import (
	"context"
	"log/slog"
	"os/exec"
	"strings"
)

// =============================================================================
// Runner
// =============================================================================

// Runner drives the docker compose CLI for a rendered project file.
type Runner struct {
	bin    string
	logger *slog.Logger
}

// NewRunner creates a Runner. bin is the container engine binary,
// normally "docker".
func NewRunner(bin string, logger *slog.Logger) *Runner {
	if bin == "" {
		bin = "docker"
	}
	return &Runner{bin: bin, logger: logger}
}

// Up starts the project in detached mode.
func (r *Runner) Up(ctx context.Context, project, composeFile string) error {
	return r.run(ctx, upArgs(project, composeFile))
}

// Down stops the project and removes its containers.
func (r *Runner) Down(ctx context.Context, project, composeFile string) error {
	return r.run(ctx, downArgs(project, composeFile))
}

// Status returns the docker compose ps output for the project.
func (r *Runner) Status(ctx context.Context, project, composeFile string) (string, error) {
	args := statusArgs(project, composeFile)
	r.logger.Debug("running compose command", "bin", r.bin, "args", args)

	out, err := exec.CommandContext(ctx, r.bin, args...).CombinedOutput()
	if err != nil {
		return "", &CommandError{Args: args, Output: string(out), Err: err}
	}
	return string(out), nil
}

func (r *Runner) run(ctx context.Context, args []string) error {
	r.logger.Debug("running compose command", "bin", r.bin, "args", args)

	out, err := exec.CommandContext(ctx, r.bin, args...).CombinedOutput()
	if err != nil {
		return &CommandError{Args: args, Output: strings.TrimSpace(string(out)), Err: err}
	}
	return nil
}

// =============================================================================
// Argument Builders
// =============================================================================

func upArgs(project, composeFile string) []string {
	return []string{"compose", "-p", project, "-f", composeFile, "up", "-d", "--remove-orphans"}
}

func downArgs(project, composeFile string) []string {
	return []string{"compose", "-p", project, "-f", composeFile, "down", "--remove-orphans"}
}

func statusArgs(project, composeFile string) []string {
	return []string{"compose", "-p", project, "-f", composeFile, "ps"}
}
