// Package playbook maps analyzer recommendations to remediation actions.
//
// Rules are evaluated in order against the lowercased recommendation and the
// first match wins, so a recommendation that mentions both "isolate" and
// "block ip" is always quarantined.
package playbook

import (
	"fmt"
	"strings"
)

// Action kinds.
const (
	ActionQuarantine = "quarantine"
	ActionBlock      = "block"
	ActionRecovery   = "recovery"
	ActionGeneral    = "general"
)

// Rule is one entry of the playbook.
type Rule struct {
	ID       string
	Name     string
	Action   string
	Keywords []string
	// Template is the action description; %s is replaced by the threat type
	// when the template contains it.
	Template string
}

func (r *Rule) matches(lowered string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Describe renders the rule's action text for a threat type.
func (r *Rule) Describe(threatType string) string {
	if strings.Contains(r.Template, "%s") {
		return fmt.Sprintf(r.Template, threatType)
	}
	return r.Template
}

// Playbook holds the ordered rule list and the fallback.
type Playbook struct {
	rules    []*Rule
	fallback *Rule
	rotation []string
}

// New creates a playbook with the default rule set.
func New() *Playbook {
	return &Playbook{
		rules:    defaultRules(),
		fallback: fallbackRule(),
		rotation: []string{"rotate secret", "credential"},
	}
}

// Select returns the first rule whose keywords appear in the recommendation,
// or the general fallback.
func (p *Playbook) Select(recommendation string) *Rule {
	lowered := strings.ToLower(recommendation)
	for _, rule := range p.rules {
		if rule.matches(lowered) {
			return rule
		}
	}
	return p.fallback
}

// NeedsSecretRotation reports whether the recommendation asks for credentials
// to be rotated. This is checked independently of the selected rule.
func (p *Playbook) NeedsSecretRotation(recommendation string) bool {
	lowered := strings.ToLower(recommendation)
	for _, kw := range p.rotation {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Rules returns the ordered rules, excluding the fallback (read-only).
func (p *Playbook) Rules() []*Rule {
	return p.rules
}

func defaultRules() []*Rule {
	return []*Rule{
		{
			ID:       "RMD-001",
			Name:     "System Quarantine",
			Action:   ActionQuarantine,
			Keywords: []string{"isolate"},
			Template: "System quarantined.",
		},
		{
			ID:       "RMD-002",
			Name:     "Automatic Threat Blocking",
			Action:   ActionBlock,
			Keywords: []string{"block ip"},
			Template: "Threat blocked.",
		},
		{
			ID:       "RMD-003",
			Name:     "Recovery Procedures",
			Action:   ActionRecovery,
			Keywords: []string{"deep scan", "review user activity"},
			Template: "Recovery procedures initiated.",
		},
	}
}

func fallbackRule() *Rule {
	return &Rule{
		ID:       "RMD-000",
		Name:     "General Remediation",
		Action:   ActionGeneral,
		Template: "Executing general remediation for %s.",
	}
}
