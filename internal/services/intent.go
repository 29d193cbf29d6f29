package services

import "strings"

// Intent is what the customer is asking the assistant for.
type Intent int

const (
	IntentUnknown Intent = iota
	IntentPanel
	IntentSchedule
	IntentHuman
	IntentQuote
)

// IntentMatcher resolves inbound content (button id or free text) to an
// intent. Kept behind an interface so the rule table can later be swapped
// for a stricter matcher without touching the state machine.
type IntentMatcher interface {
	Match(content string) Intent
}

type intentRule struct {
	shortcut string   // exact match: numeric shortcut or button id
	keywords []string // case-insensitive substring match
	intent   Intent
}

// ruleMatcher is the fixed conversation vocabulary. Order matters: the
// first matching rule wins.
type ruleMatcher struct {
	rules []intentRule
}

func NewIntentMatcher() IntentMatcher {
	return &ruleMatcher{rules: []intentRule{
		{shortcut: "1", keywords: []string{"panel", "painel"}, intent: IntentPanel},
		{shortcut: "2", keywords: []string{"agend", "schedule"}, intent: IntentSchedule},
		{shortcut: "5", keywords: []string{"atendente", "agent", "humano", "pessoa"}, intent: IntentHuman},
		{shortcut: "orcamento", keywords: []string{"orçamento", "orcamento", "quote"}, intent: IntentQuote},
	}}
}

func (m *ruleMatcher) Match(content string) Intent {
	normalized := strings.ToLower(strings.TrimSpace(content))
	if normalized == "" {
		return IntentUnknown
	}
	for _, rule := range m.rules {
		if normalized == rule.shortcut {
			return rule.intent
		}
		for _, kw := range rule.keywords {
			if strings.Contains(normalized, kw) {
				return rule.intent
			}
		}
	}
	return IntentUnknown
}
