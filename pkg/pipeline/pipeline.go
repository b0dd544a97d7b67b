package pipeline

import (
	"maps"
	"slices"
)

// Pipeline routes an alert claimed under a rule to the actions that deliver it.
type Pipeline struct {
	Name string
	// Concurrent fans the deliveries of one claimed alert out in parallel
	Concurrent bool

	routes map[string][]string
}

// NewPipeline creates an empty routing table.
func NewPipeline(name string) *Pipeline {
	return &Pipeline{Name: name, routes: make(map[string][]string)}
}

// Route appends actionIDs to the deliveries of ruleID. An action is routed at
// most once per rule so a claimed alert is never delivered twice to one channel.
func (p *Pipeline) Route(ruleID string, actionIDs ...string) *Pipeline {
	if p.routes == nil {
		p.routes = make(map[string][]string)
	}
	for _, id := range actionIDs {
		if !slices.Contains(p.routes[ruleID], id) {
			p.routes[ruleID] = append(p.routes[ruleID], id)
		}
	}
	return p
}

// GetActions returns the delivery actions of ruleID in configured order.
func (p *Pipeline) GetActions(ruleID string) []string {
	return p.routes[ruleID]
}

// RoutedRules lists the rules with at least one delivery, sorted.
func (p *Pipeline) RoutedRules() []string {
	return slices.Sorted(maps.Keys(p.routes))
}
