// Package minigame implements the rules of the hacking mini-games as
// text-driven sessions. A session accepts one line of player input at a time
// and reports feedback lines plus, once decided, a result.
package minigame

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ErrFinished is returned when input is submitted to a decided session.
var ErrFinished = errors.New("minigame already finished")

// Outcome is the response to one input line. Result is empty while the game
// is still running.
type Outcome struct {
	Lines  []domain.Line         `json:"lines"`
	Result domain.MinigameResult `json:"result,omitempty"`
}

// Done reports whether the outcome decided the game.
func (o Outcome) Done() bool { return o.Result != "" }

// Session is one running mini-game.
type Session interface {
	Config() domain.MinigameConfig
	// Intro describes the game and how to play it.
	Intro() []domain.Line
	Submit(input string) (Outcome, error)
	Result() (domain.MinigameResult, bool)
}

// Option configures a session.
type Option func(*base)

// WithClock replaces time.Now, for deterministic time limits.
func WithClock(now func() time.Time) Option {
	return func(b *base) { b.now = now }
}

// New starts a session for cfg. Data may be the typed *Data struct or a raw
// map as decoded from YAML.
func New(cfg domain.MinigameConfig, opts ...Option) (Session, error) {
	b := base{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(&b)
	}
	b.started = b.now()

	switch cfg.Type {
	case domain.MinigamePassword:
		data, err := Decode[domain.PasswordCrackerData](cfg.Data)
		if err != nil {
			return nil, err
		}
		return newPassword(b, data), nil
	case domain.MinigameEncryption:
		data, err := Decode[domain.EncryptionPuzzleData](cfg.Data)
		if err != nil {
			return nil, err
		}
		return &encryption{base: b, data: data}, nil
	case domain.MinigameNetwork:
		data, err := Decode[domain.NetworkScannerData](cfg.Data)
		if err != nil {
			return nil, err
		}
		return newScanner(b, data), nil
	case domain.MinigameInjection:
		data, err := Decode[domain.CodeInjectionData](cfg.Data)
		if err != nil {
			return nil, err
		}
		return &injection{base: b, data: data, values: make(map[string]string)}, nil
	}
	return nil, fmt.Errorf("%w: type %q", domain.ErrUnknownMinigame, cfg.Type)
}

// Decode converts raw mini-game data into T.
func Decode[T any](raw any) (T, error) {
	var out T
	switch v := raw.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
		return out, nil
	case nil:
		return out, nil
	}
	if err := mapstructure.Decode(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode minigame data: %w", err)
	}
	return out, nil
}

type base struct {
	cfg     domain.MinigameConfig
	now     func() time.Time
	started time.Time
	result  domain.MinigameResult
	hint    int
}

func (b *base) Config() domain.MinigameConfig { return b.cfg }

func (b *base) Result() (domain.MinigameResult, bool) {
	return b.result, b.result != ""
}

// begin guards every Submit: it rejects decided games and enforces the time
// limit.
func (b *base) begin(limit time.Duration) (Outcome, bool, error) {
	if b.result != "" {
		return Outcome{}, false, ErrFinished
	}
	if limit > 0 && b.now().Sub(b.started) >= limit {
		return b.finish(domain.ResultTimeout, errorLine("Time limit exceeded. Connection terminated.")), false, nil
	}
	return Outcome{}, true, nil
}

func (b *base) finish(r domain.MinigameResult, lines ...domain.Line) Outcome {
	b.result = r
	return Outcome{Lines: lines, Result: r}
}

func (b *base) nextHint(hints []string) Outcome {
	if b.hint >= len(hints) {
		return Outcome{Lines: []domain.Line{warningLine("No more hints available.")}}
	}
	h := hints[b.hint]
	b.hint++
	return Outcome{Lines: []domain.Line{systemLine("HINT: " + h)}}
}

func (b *base) header() []domain.Line {
	lines := []domain.Line{systemLine(strings.ToUpper(b.cfg.Title))}
	if b.cfg.Description != "" {
		lines = append(lines, outLine(b.cfg.Description))
	}
	return lines
}

func outLine(s string) domain.Line     { return domain.Line{Type: domain.LineOutput, Content: s} }
func systemLine(s string) domain.Line  { return domain.Line{Type: domain.LineSystem, Content: s} }
func successLine(s string) domain.Line { return domain.Line{Type: domain.LineSuccess, Content: s} }
func warningLine(s string) domain.Line { return domain.Line{Type: domain.LineWarning, Content: s} }
func errorLine(s string) domain.Line   { return domain.Line{Type: domain.LineError, Content: s} }
