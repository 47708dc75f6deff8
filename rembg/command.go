package rembg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// CommandRemover runs the rembg CLI for each image
type CommandRemover struct {
	Model string
}

// NewCommandRemover creates a CLI-backed remover for the given model name
func NewCommandRemover(model string) *CommandRemover {
	if model == "" {
		model = DefaultModel
	}
	return &CommandRemover{Model: model}
}

// Remove writes the input to a temp file, runs `rembg i` on it and reads the
// produced PNG back. The temp directory is always cleaned up, so a failed
// invocation leaves nothing behind.
func (r *CommandRemover) Remove(ctx context.Context, input []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "clearcut-rembg-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	inPath := filepath.Join(dir, "input")
	outPath := filepath.Join(dir, "output.png")

	if err := os.WriteFile(inPath, input, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write temp input: %w", err)
	}

	cmd := exec.CommandContext(ctx, "rembg", "i", "-m", r.Model, inPath, outPath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("rembg failed: %w\nrembg output: %s", err, firstLine(string(output)))
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("rembg produced no output: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("rembg produced an empty output file")
	}

	return out, nil
}

// firstLine trims multi-line tool output down to its first meaningful line
func firstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		return strings.TrimSpace(lines[0])
	}
	return "no additional information available"
}
