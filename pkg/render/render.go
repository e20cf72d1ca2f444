// Package render displays images inline in sixel-capable terminals.
package render

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/mattn/go-isatty"
)

// Renderer displays an image, or a placeholder when rendering is not
// possible. Implementations never fail; the decision loop must not
// stall on display problems.
type Renderer interface {
	Display(path string)
}

// Viewer renders images by piping them through an external sixel
// encoder (img2sixel by default). When the encoder is missing or
// stdout is not a terminal it prints a placeholder line instead.
type Viewer struct {
	command string
	out     io.Writer
	isTTY   bool
}

// NewViewer creates a viewer writing to stdout
func NewViewer(command string) *Viewer {
	if command == "" {
		command = "img2sixel"
	}
	return &Viewer{
		command: command,
		out:     os.Stdout,
		isTTY:   isatty.IsTerminal(os.Stdout.Fd()),
	}
}

// Display renders the image at path, best-effort
func (v *Viewer) Display(path string) {
	if !v.isTTY {
		v.placeholder(path, "no terminal")
		return
	}

	bin, err := exec.LookPath(v.command)
	if err != nil {
		v.placeholder(path, v.command+" not found")
		return
	}

	cmd := exec.Command(bin, path)
	cmd.Stdout = v.out
	if err := cmd.Run(); err != nil {
		v.placeholder(path, err.Error())
	}
}

func (v *Viewer) placeholder(path, reason string) {
	fmt.Fprintf(v.out, "[Image: %s] (%s)\n", path, reason)
}
