package process

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/scenetext/internal/core/domain"
	"github.com/custodia-labs/scenetext/internal/logger"
)

// maxOutput bounds the tool output kept in a ProcessError.
const maxOutput = 512

// Command starts name with args in dir and returns its combined output.
type Command func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Exec is the Command backed by os/exec.
func Exec(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// Runner launches collaborator processes.
type Runner struct {
	limiter *rate.Limiter
	command Command
}

// NewRunner creates a runner allowing perSecond launches per second.
// A non-positive rate disables pacing. A nil command uses Exec.
func NewRunner(perSecond float64, command Command) *Runner {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if command == nil {
		command = Exec
	}
	return &Runner{
		limiter: rate.NewLimiter(limit, 1),
		command: command,
	}
}

// Run launches tool on behalf of file and waits for it to exit.
func (r *Runner) Run(ctx context.Context, file, dir, tool string, args ...string) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	logger.Debug("exec %s %s (in %s)", tool, strings.Join(args, " "), dir)

	out, err := r.command(ctx, dir, tool, args...)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &domain.ProcessError{
			Tool:   tool,
			File:   file,
			Output: trimOutput(out),
			Err:    err,
		}
	}
	return nil
}

func trimOutput(out []byte) string {
	s := strings.TrimSpace(string(out))
	if len(s) > maxOutput {
		s = s[:maxOutput] + "..."
	}
	return s
}
