package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmailAllowlist(t *testing.T) {
	policy := NewEmailAllowlist([]string{"Ops@Example.com", " ", "owner@example.com "})

	assert.Equal(t, 2, policy.Len())
	assert.True(t, policy.IsAdmin("ops@example.com"))
	assert.True(t, policy.IsAdmin(" OWNER@example.com"))
	assert.False(t, policy.IsAdmin("user@example.com"))
	assert.False(t, policy.IsAdmin(""))
}

func TestEmailAllowlist_Empty(t *testing.T) {
	var nilPolicy *EmailAllowlist
	assert.False(t, nilPolicy.IsAdmin("ops@example.com"))

	assert.False(t, NewEmailAllowlist(nil).IsAdmin("ops@example.com"))
}

func TestEmailAllowlist_SatisfiesPolicy(t *testing.T) {
	var p Policy = NewEmailAllowlist([]string{"a@example.com"})
	assert.True(t, p.IsAdmin("A@example.com"))
}
