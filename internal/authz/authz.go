// Package authz decides which accounts may administer the catalog.
package authz

import "strings"

// Policy answers whether an account is an administrator.
type Policy interface {
	IsAdmin(email string) bool
}

// EmailAllowlist grants admin rights to a fixed set of emails,
// compared case-insensitively.
type EmailAllowlist struct {
	emails map[string]struct{}
}

// NewEmailAllowlist builds a policy from the given emails. Blank entries are ignored.
func NewEmailAllowlist(emails []string) *EmailAllowlist {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		if e = normalize(e); e != "" {
			set[e] = struct{}{}
		}
	}
	return &EmailAllowlist{emails: set}
}

// IsAdmin implements Policy.
func (a *EmailAllowlist) IsAdmin(email string) bool {
	if a == nil {
		return false
	}
	_, ok := a.emails[normalize(email)]
	return ok
}

// Len returns the number of admin emails.
func (a *EmailAllowlist) Len() int {
	return len(a.emails)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
