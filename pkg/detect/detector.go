// Package detect abstracts the external person-detection capability.
package detect

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Detector answers whether an image contains a person
type Detector interface {
	// Classify returns true when the image at path contains a person
	Classify(ctx context.Context, path string) (bool, error)
}

// Factory constructs a detector. Each classification worker calls the
// factory exactly once and reuses the instance for its lifetime, so
// expensive setup (model loading, binary lookup) is amortized.
type Factory func() (Detector, error)

// Func adapts a plain function to the Detector interface
type Func func(ctx context.Context, path string) (bool, error)

// Classify calls f
func (f Func) Classify(ctx context.Context, path string) (bool, error) {
	return f(ctx, path)
}

// CommandDetector invokes an external detector executable per image.
// Exit code 0 means a person was found, exit code 1 means none.
type CommandDetector struct {
	path string
	args []string
}

// NewCommandDetector resolves the detector command and returns a
// reusable detector. Resolution happens once here, not per image.
func NewCommandDetector(command string, args ...string) (*CommandDetector, error) {
	if command == "" {
		return nil, errors.New("detector command is empty")
	}
	path, err := exec.LookPath(command)
	if err != nil {
		return nil, fmt.Errorf("detector command not found: %w", err)
	}
	return &CommandDetector{path: path, args: args}, nil
}

// Classify runs the detector command against one image
func (d *CommandDetector) Classify(ctx context.Context, path string) (bool, error) {
	cmd := exec.CommandContext(ctx, d.path, append(append([]string{}, d.args...), path)...)
	err := cmd.Run()
	if err == nil {
		return true, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return false, nil
	}
	return false, fmt.Errorf("detector failed on %s: %w", path, err)
}

// CommandFactory returns a Factory producing one CommandDetector per worker
func CommandFactory(command string, args ...string) Factory {
	return func() (Detector, error) {
		return NewCommandDetector(command, args...)
	}
}
