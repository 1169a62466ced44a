package classgraph

import "strings"

// RuleAction says whether a matching rule admits or rejects a class.
type RuleAction string

const (
	Include RuleAction = "include"
	Exclude RuleAction = "exclude"
)

// MatchKind selects how a rule pattern is compared with a class name.
type MatchKind string

const (
	MatchPrefix MatchKind = "prefix"
	MatchInfix  MatchKind = "infix"
)

// Rule is one entry of a NamingPolicy. Patterns may use dots or slashes as
// package separators.
type Rule struct {
	Action  RuleAction
	Match   MatchKind
	Pattern string
}

func (r Rule) matches(name string) bool {
	switch r.Match {
	case MatchInfix:
		return strings.Contains(name, r.Pattern)
	default:
		return strings.HasPrefix(name, r.Pattern)
	}
}

// NamingPolicy decides by class name which classes may belong to the visible
// API. Rules are checked in order and the first match decides. When nothing
// matches, the class is admitted only if the policy has no Include rules.
type NamingPolicy struct {
	rules      []Rule
	hasInclude bool
}

// NewNamingPolicy builds a policy from ordered rules.
func NewNamingPolicy(rules ...Rule) NamingPolicy {
	p := NamingPolicy{rules: make([]Rule, 0, len(rules))}
	for _, r := range rules {
		r.Pattern = NormalizeName(r.Pattern)
		if r.Pattern == "" {
			continue
		}
		if r.Match == "" {
			r.Match = MatchPrefix
		}
		if r.Action == Include {
			p.hasInclude = true
		}
		p.rules = append(p.rules, r)
	}
	return p
}

// PolicyFromLists builds the common "include these prefixes, except these
// prefixes and infixes" policy. Exclusions are placed ahead of inclusions.
func PolicyFromLists(include, excludePrefixes, excludeInfixes []string) NamingPolicy {
	var rules []Rule
	for _, p := range excludeInfixes {
		rules = append(rules, Rule{Action: Exclude, Match: MatchInfix, Pattern: p})
	}
	for _, p := range excludePrefixes {
		rules = append(rules, Rule{Action: Exclude, Match: MatchPrefix, Pattern: p})
	}
	for _, p := range include {
		rules = append(rules, Rule{Action: Include, Match: MatchPrefix, Pattern: p})
	}
	return NewNamingPolicy(rules...)
}

// Allows reports whether a class name passes the policy.
func (p NamingPolicy) Allows(name string) bool {
	for _, r := range p.rules {
		if r.matches(name) {
			return r.Action == Include
		}
	}
	return !p.hasInclude
}

// Rules returns a copy of the normalized rules.
func (p NamingPolicy) Rules() []Rule {
	return append([]Rule(nil), p.rules...)
}

// NormalizeName converts a dotted name or package pattern to binary form.
func NormalizeName(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ".", "/")
}
