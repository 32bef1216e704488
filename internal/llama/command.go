package llama

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/Timtroll/llm/internal/domain"
)

// FindExecutable returns the first candidate path that exists as a regular
// file. The candidate list covers the known llama.cpp install locations.
func FindExecutable(candidates []string) (string, error) {
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: tried %v", domain.ErrExecNotFound, candidates)
}

// BuildCommand assembles the llama-cli argument list. Model path, prompt,
// token count, temperature and conversation mode are always present; sampling
// parameters the caller did not supply are omitted so the runtime keeps its
// own defaults. No numeric validation happens here, bad values surface as
// subprocess failures.
func BuildCommand(exe string, model domain.ModelInfo, prompt string, params domain.GenerateParams) []string {
	args := []string{
		exe,
		"-m", model.Path,
		"-p", prompt,
		"-n", strconv.Itoa(params.NTokens),
		"--temp", formatFloat(params.Temperature),
		"-cnv",
	}
	if params.TopP != nil {
		args = append(args, "--top-p", formatFloat(*params.TopP))
	}
	if params.TopK != nil {
		args = append(args, "--top-k", strconv.Itoa(*params.TopK))
	}
	if params.RepeatPenalty != nil {
		args = append(args, "--repeat-penalty", formatFloat(*params.RepeatPenalty))
	}
	if params.Seed != nil {
		args = append(args, "--seed", strconv.Itoa(*params.Seed))
	}
	return args
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Runner executes the generation subprocess. The interface exists so the
// orchestrator can be tested without a llama.cpp build present.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
}

// ExecRunner runs commands via os/exec. The context bounds the call;
// exec.CommandContext kills the subprocess when the deadline expires, so a
// timed-out generation is terminated, never abandoned.
type ExecRunner struct{}

func NewRunner() *ExecRunner {
	return &ExecRunner{}
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("%w: %s", domain.ErrGenerationTimeout, name)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("%w: exit code %d: %s",
				domain.ErrGenerationFailed, exitErr.ExitCode(), stderr.String())
		}
		return "", fmt.Errorf("%w: %v", domain.ErrGenerationFailed, err)
	}
	return stdout.String(), nil
}

var _ Runner = (*ExecRunner)(nil)
