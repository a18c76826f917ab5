package domain

// KeywordMatch is a blacklist hit on a payload.
type KeywordMatch struct {
	Keyword string
	Message string
}
