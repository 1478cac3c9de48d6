package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"ArticleHistoryBot/internal/ports"
)

// Decider asks yes/no questions on a terminal.
type Decider struct {
	in  *bufio.Scanner
	out io.Writer
}

var _ ports.Decider = (*Decider)(nil)

// NewDecider reads answers from in and writes prompts to out
// (typically stdin/stdout).
func NewDecider(in io.Reader, out io.Writer) *Decider {
	return &Decider{in: bufio.NewScanner(in), out: out}
}

// Confirm prints the prompt and blocks for a y/n answer. Anything else,
// including closed input, is an error so callers never mistake silence for
// consent.
func (d *Decider) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(d.out, "%s [y/n]: ", prompt)
	if !d.in.Scan() {
		if err := d.in.Err(); err != nil {
			return false, fmt.Errorf("read answer: %w", err)
		}
		return false, fmt.Errorf("input closed")
	}
	switch strings.ToLower(strings.TrimSpace(d.in.Text())) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return false, fmt.Errorf("unrecognized answer %q", d.in.Text())
	}
}
