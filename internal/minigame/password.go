package minigame

import (
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/disconnected/pkg/domain"
)

const (
	defaultDetectionLimit = 100
	defaultTimeLimit      = 60 * time.Second
	detectionPerMiss      = 15
)

// Mark is the per-character verdict of a password guess.
type Mark string

const (
	MarkCorrect Mark = "correct"
	MarkPresent Mark = "present"
	MarkAbsent  Mark = "absent"
)

// CharFeedback is one character of a guess and its verdict.
type CharFeedback struct {
	Char rune
	Mark Mark
}

// Score compares guess to answer case-insensitively, position by position.
func Score(guess, answer string) []CharFeedback {
	g := []rune(strings.ToUpper(guess))
	a := []rune(strings.ToUpper(answer))
	out := make([]CharFeedback, len(g))
	for i, c := range g {
		switch {
		case i < len(a) && a[i] == c:
			out[i] = CharFeedback{c, MarkCorrect}
		case strings.ContainsRune(string(a), c):
			out[i] = CharFeedback{c, MarkPresent}
		default:
			out[i] = CharFeedback{c, MarkAbsent}
		}
	}
	return out
}

// Render formats feedback as "P+ A? S-": + correct, ? present, - absent.
func Render(fb []CharFeedback) string {
	parts := make([]string, len(fb))
	for i, f := range fb {
		mark := "-"
		switch f.Mark {
		case MarkCorrect:
			mark = "+"
		case MarkPresent:
			mark = "?"
		}
		parts[i] = string(f.Char) + mark
	}
	return strings.Join(parts, " ")
}

type password struct {
	base
	data      domain.PasswordCrackerData
	length    int
	limit     int
	timeLimit time.Duration
	detection int
	attempts  []string
}

func newPassword(b base, data domain.PasswordCrackerData) *password {
	p := &password{base: b, data: data, length: data.Length, limit: b.cfg.DetectionLimit, timeLimit: b.cfg.TimeLimit}
	if p.length <= 0 {
		p.length = len([]rune(data.Answer))
	}
	if p.limit <= 0 {
		p.limit = defaultDetectionLimit
	}
	if p.timeLimit <= 0 {
		p.timeLimit = defaultTimeLimit
	}
	return p
}

// Detection returns the current trace level.
func (p *password) Detection() int { return p.detection }

func (p *password) Intro() []domain.Line {
	return append(p.header(),
		outLine(fmt.Sprintf("Target length: %d characters. Time limit: %ds. Detection limit: %d.",
			p.length, int(p.timeLimit/time.Second), p.limit)),
		outLine("Each miss raises detection. Feedback: + correct, ? wrong position, - absent."),
		outLine("Type 'hint' for a hint."),
	)
}

func (p *password) Submit(input string) (Outcome, error) {
	out, ok, err := p.begin(p.timeLimit)
	if !ok {
		return out, err
	}

	guess := strings.TrimSpace(input)
	if strings.EqualFold(guess, "hint") {
		return p.nextHint(p.data.Hints), nil
	}
	if len([]rune(guess)) != p.length {
		return Outcome{Lines: []domain.Line{warningLine(fmt.Sprintf("Guess must be %d characters.", p.length))}}, nil
	}

	if strings.EqualFold(guess, p.data.Answer) {
		return p.finish(domain.ResultSuccess, successLine("ACCESS GRANTED")), nil
	}

	p.attempts = append(p.attempts, strings.ToUpper(guess))
	p.detection = min(p.detection+detectionPerMiss, p.limit)

	lines := []domain.Line{
		outLine(Render(Score(guess, p.data.Answer))),
		warningLine(fmt.Sprintf("Detection: %d/%d", p.detection, p.limit)),
	}
	if p.detection >= p.limit {
		lines = append(lines, errorLine("INTRUSION DETECTED. Connection terminated."))
		return p.finish(domain.ResultFailure, lines...), nil
	}
	return Outcome{Lines: lines}, nil
}
