package redact

import (
	"fmt"
	"regexp"
)

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Redactor masks sensitive values in free text before it is logged.
type Redactor struct {
	rules []compiledRule
}

func NewRedactor(cfg RulesConfig) (*Redactor, error) {
	var compiled []compiledRule
	for _, rule := range cfg.Rules {
		if !rule.Enabled {
			continue
		}
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling rule %s: %w", rule.Name, err)
		}
		compiled = append(compiled, compiledRule{rule: rule, re: re})
	}
	return &Redactor{rules: compiled}, nil
}

// Mask replaces every match of every enabled rule. A nil Redactor returns
// text unchanged.
func (r *Redactor) Mask(text string) string {
	if r == nil {
		return text
	}
	masked := text
	for _, rule := range r.rules {
		masked = rule.re.ReplaceAllString(masked, rule.rule.Mask)
	}
	return masked
}

// Detect reports the types of the rules that match text.
func (r *Redactor) Detect(text string) []string {
	if r == nil {
		return nil
	}
	var types []string
	for _, rule := range r.rules {
		if rule.re.MatchString(text) {
			types = append(types, rule.rule.Type)
		}
	}
	return types
}
