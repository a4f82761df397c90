package domain

// Fallback template keys understood by the assistant.
const (
	FallbackClarifyAccount = "clarify_account"
	FallbackGeneralOpening = "general_opening"
	FallbackHandoff        = "handoff"
)

// Intents with account-specific fallback behavior.
const (
	IntentAccountBenefits = "account_benefits"
	IntentAccountOpening  = "account_opening"
)

// IntentKeywords pairs an intent name with its ordered keyword list.
type IntentKeywords struct {
	Intent   string
	Keywords []string
}

// SynonymGroup maps a canonical product key to the phrasings users say for it.
type SynonymGroup struct {
	Key      string
	Synonyms []string
}

// Lexicon is the immutable language configuration loaded once at startup.
//
// Intents and Products are ordered slices, not maps: the declaration order in
// the voice-config file decides which intent or product wins when several
// match, so iteration order must be stable.
type Lexicon struct {
	// SystemPrompt steers the answer generator. Required; startup fails
	// without it.
	SystemPrompt string

	// Intents in declaration order. First intent with a matching keyword wins.
	Intents []IntentKeywords

	// Products in declaration order. First group with a matching synonym wins.
	Products []SynonymGroup

	// Fallbacks maps fallback keys to canned replies.
	Fallbacks map[string]string

	// DisplayNames maps canonical product keys to catalog names. May be empty;
	// the resolver then title-cases the key.
	DisplayNames map[string]string
}

// KeywordsFor returns the keyword list for the named intent, or nil when the
// intent is not configured.
func (l *Lexicon) KeywordsFor(intent string) []string {
	for _, in := range l.Intents {
		if in.Intent == intent {
			return in.Keywords
		}
	}
	return nil
}
