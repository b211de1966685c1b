package minigame

import (
	"fmt"
	"strings"

	"github.com/aretw0/disconnected/pkg/domain"
)

type scanner struct {
	base
	data      domain.NetworkScannerData
	nodes     map[string]domain.NetworkNode
	scanned   map[string]bool
	exploited map[string]bool
}

func newScanner(b base, data domain.NetworkScannerData) *scanner {
	s := &scanner{
		base:      b,
		data:      data,
		nodes:     make(map[string]domain.NetworkNode, len(data.Nodes)),
		scanned:   map[string]bool{data.StartNode: true},
		exploited: map[string]bool{data.StartNode: true},
	}
	for _, n := range data.Nodes {
		s.nodes[n.ID] = n
	}
	return s
}

// CanScan reports whether id is adjacent to an exploited node.
func (s *scanner) CanScan(id string) bool {
	for _, e := range s.data.Edges {
		if (s.exploited[e.From] && e.To == id) || (s.exploited[e.To] && e.From == id) {
			return true
		}
	}
	return false
}

func (s *scanner) Intro() []domain.Line {
	lines := append(s.header(),
		outLine(fmt.Sprintf("Foothold: %s. Target: %s.", s.data.StartNode, s.data.TargetNode)),
		outLine("Commands: scan <node>, exploit <node>, map"),
	)
	return append(lines, s.topology()...)
}

func (s *scanner) topology() []domain.Line {
	lines := make([]domain.Line, 0, len(s.data.Nodes))
	for _, n := range s.data.Nodes {
		status := "unknown"
		switch {
		case s.exploited[n.ID]:
			status = "exploited"
		case s.scanned[n.ID]:
			status = "scanned"
		case s.CanScan(n.ID):
			status = "reachable"
		}
		lines = append(lines, outLine(fmt.Sprintf("  %-12s %-10s %s", n.ID, n.Type, status)))
	}
	return lines
}

func (s *scanner) Submit(input string) (Outcome, error) {
	out, ok, err := s.begin(s.cfg.TimeLimit)
	if !ok {
		return out, err
	}

	fields := strings.Fields(input)
	if len(fields) == 1 && strings.EqualFold(fields[0], "map") {
		return Outcome{Lines: s.topology()}, nil
	}
	if len(fields) != 2 {
		return Outcome{Lines: []domain.Line{warningLine("Usage: scan <node> | exploit <node> | map")}}, nil
	}

	verb, id := strings.ToLower(fields[0]), fields[1]
	node, known := s.nodes[id]
	if !known {
		return Outcome{Lines: []domain.Line{errorLine("Unknown node: " + id)}}, nil
	}

	switch verb {
	case "scan":
		if s.scanned[id] {
			return Outcome{Lines: []domain.Line{warningLine(id + " already scanned.")}}, nil
		}
		if !s.CanScan(id) {
			return Outcome{Lines: []domain.Line{errorLine(id + " is not reachable from an exploited node.")}}, nil
		}
		s.scanned[id] = true
		lines := []domain.Line{systemLine(fmt.Sprintf("Scanned %s (%s)", node.Label, node.Type))}
		if node.Secured {
			lines = append(lines, outLine("Status: SECURED"))
		} else {
			lines = append(lines, outLine("Status: OPEN"))
		}
		if node.Vulnerability != "" {
			lines = append(lines, warningLine("Vulnerability: "+node.Vulnerability))
		}
		return Outcome{Lines: lines}, nil

	case "exploit":
		switch {
		case s.exploited[id]:
			return Outcome{Lines: []domain.Line{warningLine(id + " already exploited.")}}, nil
		case !s.scanned[id]:
			return Outcome{Lines: []domain.Line{errorLine("Scan " + id + " first.")}}, nil
		case node.Secured && node.Vulnerability == "":
			return Outcome{Lines: []domain.Line{errorLine(id + " is secured with no known vulnerability.")}}, nil
		}
		s.exploited[id] = true
		if id == s.data.TargetNode {
			return s.finish(domain.ResultSuccess, successLine("Target compromised: "+node.Label)), nil
		}
		return Outcome{Lines: []domain.Line{successLine("Exploited " + node.Label)}}, nil
	}
	return Outcome{Lines: []domain.Line{warningLine("Usage: scan <node> | exploit <node> | map")}}, nil
}
