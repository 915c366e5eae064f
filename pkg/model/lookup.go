package model

// LookupResult is the synchronous outcome of a structured lookup. Text holds
// a concise human-readable summary on success, or a short reason on failure.
// Results are ephemeral and never persisted.
type LookupResult struct {
	Kind      CommandKind
	Query     string
	Text      string
	Succeeded bool
	ErrKind   ErrKind
}

// NewLookupResult builds a successful result.
func NewLookupResult(kind CommandKind, query, text string) *LookupResult {
	return &LookupResult{
		Kind:      kind,
		Query:     query,
		Text:      text,
		Succeeded: true,
	}
}

// NewLookupFailure builds a failed result classified from err.
func NewLookupFailure(kind CommandKind, query string, err error) *LookupResult {
	return &LookupResult{
		Kind:    kind,
		Query:   query,
		Text:    KindOfError(err).Describe(),
		ErrKind: KindOfError(err),
	}
}
