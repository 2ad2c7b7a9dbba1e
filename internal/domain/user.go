package domain

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// User is a field engineer, office user or administrator.
type User struct {
	ID               string
	Name             string
	Email            *string
	PasswordHash     string
	IsAdmin          bool
	AccountActivated bool
	SearchName       string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// SetName updates the display name together with its search key.
func (u *User) SetName(name string) {
	u.Name = strings.TrimSpace(name)
	u.SearchName = NormalizeName(u.Name)
}

// Deactivate clears personal data and revokes every capability.
func (u *User) Deactivate() {
	u.Name = ""
	u.Email = nil
	u.PasswordHash = ""
	u.SearchName = ""
	u.IsAdmin = false
	u.AccountActivated = false
}

// NormalizeName produces the directory search key: lowercased, reduced to
// [a-z0-9] and whitespace, trimmed. Whitespace is exactly the unicode.IsSpace
// set, so U+0085 and U+00A0 are kept while U+FEFF and U+200B are dropped.
// Stored keys and search prefixes must both go through this function.
func NormalizeName(name string) string {
	lowered := cases.Lower(language.Und).String(name)
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
