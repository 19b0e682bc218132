package agent

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/RichardoC/todo-agent/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type linesReader struct {
	lines   []string
	prompts []string
	err     error
}

func (r *linesReader) ReadLine(prompt string) (string, error) {
	r.prompts = append(r.prompts, prompt)
	if len(r.lines) == 0 {
		if r.err != nil {
			return "", r.err
		}
		return "", io.EOF
	}
	line := r.lines[0]
	r.lines = r.lines[1:]
	return line, nil
}

func TestRunPrintsOutputsAndErrors(t *testing.T) {
	f := newFixture(t, config.AgentConfig{Prompt: "Enter your query: "},
		`{"type":"output","output":"Hello!"}`,
		`garbage`,
	)
	in := &linesReader{lines: []string{"hi", "   ", "add milk"}}
	var out bytes.Buffer

	require.NoError(t, f.agent.Run(context.Background(), in, &out))

	assert.Equal(t, "Output: Hello!\nError: malformed model reply: invalid character 'g' looking for beginning of value\n", out.String())
	assert.Equal(t, []string{"Enter your query: ", "Enter your query: ", "Enter your query: ", "Enter your query: "}, in.prompts)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	f := newFixture(t, config.AgentConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := &linesReader{lines: []string{"hi"}}
	require.NoError(t, f.agent.Run(ctx, in, io.Discard))
	assert.Empty(t, in.prompts)
}

func TestRunPropagatesReadErrors(t *testing.T) {
	f := newFixture(t, config.AgentConfig{})
	in := &linesReader{err: errors.New("tty gone")}
	err := f.agent.Run(context.Background(), in, io.Discard)
	assert.ErrorContains(t, err, "tty gone")
}
