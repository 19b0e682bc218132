package agent

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	ErrMalformedReply = errors.New("malformed model reply")
	ErrUnknownKind    = errors.New("unknown reply type")
)

type Kind string

const (
	KindUser        Kind = "user"
	KindPlan        Kind = "plan"
	KindAction      Kind = "action"
	KindObservation Kind = "observation"
	KindOutput      Kind = "output"
)

// Envelope is one message of the conversation protocol. The set of
// implementations is closed.
type Envelope interface {
	Kind() Kind
	envelope()
}

type User struct {
	User string `json:"user"`
}

type Plan struct {
	Plan string `json:"plan"`
}

type Action struct {
	Function string          `json:"function"`
	Input    json.RawMessage `json:"input,omitempty"`
}

type Observation struct {
	Observation any `json:"observation"`
}

type Output struct {
	Output string `json:"output"`
}

func (User) Kind() Kind        { return KindUser }
func (Plan) Kind() Kind        { return KindPlan }
func (Action) Kind() Kind      { return KindAction }
func (Observation) Kind() Kind { return KindObservation }
func (Output) Kind() Kind      { return KindOutput }

func (User) envelope()        {}
func (Plan) envelope()        {}
func (Action) envelope()      {}
func (Observation) envelope() {}
func (Output) envelope()      {}

// Encode renders e as a JSON object with its "type" discriminator first.
func Encode(e Envelope) (string, error) {
	var v any
	switch e := e.(type) {
	case User:
		v = struct {
			Type Kind `json:"type"`
			User
		}{KindUser, e}
	case Plan:
		v = struct {
			Type Kind `json:"type"`
			Plan
		}{KindPlan, e}
	case Action:
		v = struct {
			Type Kind `json:"type"`
			Action
		}{KindAction, e}
	case Observation:
		v = struct {
			Type Kind `json:"type"`
			Observation
		}{KindObservation, e}
	case Output:
		v = struct {
			Type Kind `json:"type"`
			Output
		}{KindOutput, e}
	default:
		return "", fmt.Errorf("%w: %T", ErrUnknownKind, e)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode %s envelope: %w", e.Kind(), err)
	}
	return string(b), nil
}

// DecodeReply parses a model reply. Only plan, action and output are valid
// from the model; anything else is rejected.
func DecodeReply(raw string) (Envelope, error) {
	data := []byte(stripFence(raw))

	var head struct {
		Type Kind `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}

	switch head.Type {
	case "":
		return nil, fmt.Errorf("%w: missing \"type\"", ErrMalformedReply)
	case KindPlan:
		var p Plan
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		return p, nil
	case KindAction:
		var a Action
		if err := json.Unmarshal(data, &a); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		if strings.TrimSpace(a.Function) == "" {
			return nil, fmt.Errorf("%w: action without \"function\"", ErrMalformedReply)
		}
		return a, nil
	case KindOutput:
		var o Output
		if err := json.Unmarshal(data, &o); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
		}
		return o, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, head.Type)
}

// stripFence removes a surrounding ``` fence and its language tag.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(strings.TrimPrefix(s, "```"), "```")
	// drop a language tag such as json, JSON or jsonc
	if tag, rest, ok := strings.Cut(s, "\n"); ok && !strings.ContainsAny(tag, "{[") {
		s = rest
	} else {
		s = strings.TrimLeftFunc(s, unicode.IsLetter)
	}
	return strings.TrimSpace(s)
}
