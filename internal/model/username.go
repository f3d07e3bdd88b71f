package model

// ResolutionKind tags what a username mapping currently points at.
type ResolutionKind int

const (
	// ResolutionAbsent means no mapping exists for the name.
	ResolutionAbsent ResolutionKind = iota

	// ResolutionID means the mapping holds a user identifier.
	ResolutionID

	// ResolutionLegacyEmail means the mapping predates the identifier
	// migration and still holds the raw sign-in email. Consumers must never
	// treat the email as an identifier; the mapping needs repair first.
	ResolutionLegacyEmail
)

// Resolution is the result of looking up a username in the directory.
// Exactly one of UserID or Email is set, depending on Kind.
type Resolution struct {
	Kind   ResolutionKind
	UserID string
	Email  string
}
