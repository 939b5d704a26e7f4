package di

// Scope is the lifecycle policy of a provider.
type Scope string

const (
	// Singleton providers build one instance and return it on every call.
	Singleton Scope = "singleton"
	// Prototype providers build a new instance on every call.
	Prototype Scope = "prototype"
)

// OverrideStrategy decides whether a registration may replace an existing
// type or name.
type OverrideStrategy int

const (
	// OverrideAllowed lets a later registration replace an earlier one.
	OverrideAllowed OverrideStrategy = iota
	// OverrideNotAllowed rejects registrations whose type or name exists.
	OverrideNotAllowed
)

func (s OverrideStrategy) String() string {
	switch s {
	case OverrideAllowed:
		return "allowed"
	case OverrideNotAllowed:
		return "not_allowed"
	default:
		return "unknown"
	}
}

// NameMatching controls how names are compared in the name index.
type NameMatching int

const (
	// NameMatchingSensitive compares names byte for byte.
	NameMatchingSensitive NameMatching = iota
	// NameMatchingInsensitive folds names to lower case before comparing.
	NameMatchingInsensitive
)

func (m NameMatching) String() string {
	switch m {
	case NameMatchingSensitive:
		return "sensitive"
	case NameMatchingInsensitive:
		return "insensitive"
	default:
		return "unknown"
	}
}
