package minigame

import (
	"fmt"
	"strings"

	"github.com/aretw0/disconnected/pkg/domain"
)

type injection struct {
	base
	data   domain.CodeInjectionData
	values map[string]string
}

func (j *injection) Intro() []domain.Line {
	lines := j.header()
	for _, l := range strings.Split(j.data.Code, "\n") {
		lines = append(lines, outLine("  "+l))
	}
	for _, p := range j.data.InjectionPoints {
		lines = append(lines, outLine(fmt.Sprintf("Point %s at line %d: %s", p.ID, p.Line, p.Placeholder)))
	}
	return append(lines, outLine("Set a point with '<point> <value>', then 'run'. 'hint <point>' shows a hint."))
}

// Correct reports whether every point holds its expected value, ignoring
// surrounding space and case.
func (j *injection) Correct() bool {
	for _, p := range j.data.InjectionPoints {
		if !strings.EqualFold(strings.TrimSpace(j.values[p.ID]), p.CorrectValue) {
			return false
		}
	}
	return true
}

func (j *injection) point(id string) (domain.InjectionPoint, bool) {
	for _, p := range j.data.InjectionPoints {
		if p.ID == id {
			return p, true
		}
	}
	return domain.InjectionPoint{}, false
}

func (j *injection) Submit(input string) (Outcome, error) {
	out, ok, err := j.begin(j.cfg.TimeLimit)
	if !ok {
		return out, err
	}

	input = strings.TrimSpace(input)
	head, rest, _ := strings.Cut(input, " ")

	switch strings.ToLower(head) {
	case "run":
		if j.Correct() {
			lines := []domain.Line{successLine("Injection successful.")}
			if j.data.ExpectedOutput != "" {
				lines = append(lines, outLine(j.data.ExpectedOutput))
			}
			return j.finish(domain.ResultSuccess, lines...), nil
		}
		return Outcome{Lines: []domain.Line{errorLine("Execution failed. Payload rejected.")}}, nil
	case "hint":
		p, found := j.point(strings.TrimSpace(rest))
		if !found || p.Hint == "" {
			return Outcome{Lines: []domain.Line{warningLine("No hint available.")}}, nil
		}
		return Outcome{Lines: []domain.Line{systemLine("HINT: " + p.Hint)}}, nil
	}

	if _, found := j.point(head); !found {
		return Outcome{Lines: []domain.Line{warningLine("Unknown injection point: " + head)}}, nil
	}
	j.values[head] = rest
	return Outcome{Lines: []domain.Line{outLine(fmt.Sprintf("%s = %s", head, strings.TrimSpace(rest)))}}, nil
}
