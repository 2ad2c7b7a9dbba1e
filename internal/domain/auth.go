package domain

// Actor is the resolved caller of an operation. A nil *Actor means no
// authenticated identity.
type Actor struct {
	UserID  string
	IsAdmin bool
}

// Authenticated reports whether a caller identity is present.
func (a *Actor) Authenticated() bool {
	return a != nil && a.UserID != ""
}

// Admin reports whether the caller is an authenticated admin.
func (a *Actor) Admin() bool {
	return a.Authenticated() && a.IsAdmin
}
