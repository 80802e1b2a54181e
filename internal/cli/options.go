package cli

import (
	"bufio"
	"io"

	"github.com/okian/mahara/pkg/logger"
)

// Option configures the terminal.
type Option func(*Terminal)

// WithInput sets the command source.
func WithInput(r io.Reader) Option {
	return func(t *Terminal) {
		t.in = bufio.NewScanner(r)
	}
}

// WithOutput sets the render target.
func WithOutput(w io.Writer) Option {
	return func(t *Terminal) {
		t.out = w
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Terminal) {
		t.logger = l
	}
}
