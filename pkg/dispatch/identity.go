package dispatch

// DefaultIdentity answers identification when no Identifier is given.
const DefaultIdentity = "hardsync"

// Identifier provides the identity reported by IdentifyResponse.
type Identifier interface {
	Identity() string
}

// IdentifierFunc is the func form of Identifier.
type IdentifierFunc func() string

// Identity implements Identifier.
func (f IdentifierFunc) Identity() string {
	return f()
}

// StaticIdentity is a fixed identity.
type StaticIdentity string

// Identity implements Identifier.
func (s StaticIdentity) Identity() string {
	return string(s)
}
