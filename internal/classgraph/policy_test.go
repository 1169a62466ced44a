package classgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamingPolicy_Allows(t *testing.T) {
	gradleLogging := PolicyFromLists(
		[]string{"org.gradle.logging"},
		nil,
		[]string{"/internal/"},
	)

	tests := []struct {
		name   string
		policy NamingPolicy
		class  string
		want   bool
	}{
		{"zero policy admits all", NamingPolicy{}, "any/Thing", true},
		{"included prefix", gradleLogging, "org/gradle/logging/Logger", true},
		{"internal infix excluded", gradleLogging, "org/gradle/logging/internal/Impl", false},
		{"outside prefix", gradleLogging, "org/gradle/api/Project", false},
		{"excludes only", PolicyFromLists(nil, []string{"com/acme/impl"}, nil), "com/acme/Api", true},
		{"exclude prefix hit", PolicyFromLists(nil, []string{"com/acme/impl"}, nil), "com/acme/impl/X", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.policy.Allows(tt.class))
		})
	}
}

func TestNamingPolicy_FirstMatchWins(t *testing.T) {
	p := NewNamingPolicy(
		Rule{Action: Include, Match: MatchPrefix, Pattern: "org/acme/internal/spi"},
		Rule{Action: Exclude, Match: MatchInfix, Pattern: "/internal/"},
		Rule{Action: Include, Pattern: "org.acme"},
	)

	assert.True(t, p.Allows("org/acme/internal/spi/Plugin"))
	assert.False(t, p.Allows("org/acme/internal/Impl"))
	assert.True(t, p.Allows("org/acme/Api"))
	assert.False(t, p.Allows("com/other/Api"))
}

func TestNewNamingPolicy_Normalizes(t *testing.T) {
	p := NewNamingPolicy(Rule{Action: Include, Pattern: " org.acme "}, Rule{Action: Exclude, Pattern: ""})

	rules := p.Rules()
	if assert.Len(t, rules, 1) {
		assert.Equal(t, "org/acme", rules[0].Pattern)
		assert.Equal(t, MatchPrefix, rules[0].Match)
	}
}
