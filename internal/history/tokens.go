package history

import (
	"unicode/utf8"

	"github.com/RichardoC/todo-agent/internal/models"
	tiktoken "github.com/pkoukk/tiktoken-go"
)

// perMessageOverhead approximates the role and framing tokens chat APIs add.
const perMessageOverhead = 4

type Counter interface {
	CountMessage(msg models.Message) int
}

// TiktokenCounter counts with a BPE encoding, falling back to a character
// heuristic when the encoding cannot be loaded (e.g. offline).
type TiktokenCounter struct {
	encoder *tiktoken.Tiktoken
}

func NewTiktokenCounter(encoding string) *TiktokenCounter {
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return &TiktokenCounter{}
	}
	return &TiktokenCounter{encoder: enc}
}

func (c *TiktokenCounter) Fallback() bool {
	return c.encoder == nil
}

func (c *TiktokenCounter) CountMessage(msg models.Message) int {
	if c.encoder == nil {
		return HeuristicCounter{}.CountMessage(msg)
	}
	return perMessageOverhead + len(c.encoder.Encode(msg.Content, nil, nil))
}

// HeuristicCounter assumes roughly four characters per token.
type HeuristicCounter struct{}

func (HeuristicCounter) CountMessage(msg models.Message) int {
	n := utf8.RuneCountInString(msg.Content)
	return perMessageOverhead + (n+3)/4
}
