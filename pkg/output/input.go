package output

import (
	"context"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/mverbeek/peoplescan/pkg/models"
)

// ctrl-C arrives as a raw byte while the terminal is in raw mode
const byteInterrupt = 0x03

// KeyReader reads single-character responses for interactive prompts.
// When the input is a terminal it switches to raw mode for the read so
// no Enter key is required.
type KeyReader struct {
	in io.Reader
}

// NewKeyReader creates a key reader. Pass os.Stdin for interactive use.
func NewKeyReader(in io.Reader) *KeyReader {
	if in == nil {
		in = os.Stdin
	}
	return &KeyReader{in: in}
}

// ReadKey blocks for one key press. Carriage returns and newlines are
// skipped so line-buffered input (pipes, tests) still works. Returns
// models.ErrInterrupted on Ctrl-C or context cancellation.
func (r *KeyReader) ReadKey(ctx context.Context) (byte, error) {
	if f, ok := r.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		state, err := term.MakeRaw(int(f.Fd()))
		if err == nil {
			defer term.Restore(int(f.Fd()), state)
		}
	}

	type keyResult struct {
		b   byte
		err error
	}
	ch := make(chan keyResult, 1)

	// The read itself cannot be cancelled; on context cancellation the
	// goroutine is abandoned and exits with the process.
	go func() {
		buf := make([]byte, 1)
		for {
			if _, err := r.in.Read(buf); err != nil {
				ch <- keyResult{0, err}
				return
			}
			if buf[0] == '\n' || buf[0] == '\r' {
				continue
			}
			ch <- keyResult{buf[0], nil}
			return
		}
	}()

	select {
	case <-ctx.Done():
		return 0, models.ErrInterrupted
	case res := <-ch:
		if res.err != nil {
			return 0, res.err
		}
		if res.b == byteInterrupt {
			return 0, models.ErrInterrupted
		}
		return res.b, nil
	}
}
