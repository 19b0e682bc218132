package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

// LineReader blocks for one line of user input.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

// Run is the interactive loop. It returns nil on EOF or when ctx is
// cancelled; a failed turn is reported on out and the loop keeps going.
func (a *Agent) Run(ctx context.Context, in LineReader, out io.Writer) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := in.ReadLine(a.cfg.Prompt)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		output, err := a.Turn(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			a.logger.Error("Failed to process message", zap.Error(err))
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "Output: %s\n", output)
	}
}
