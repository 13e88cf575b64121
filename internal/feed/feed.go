package feed

import "github.com/Adrien7782/BankVocabulary/internal/models"

// Snapshot is one change-feed emission: the complete card collection of a
// scope at a point in time. Consumers must treat it as a full replace and
// use the scope tag to discard emissions that arrive after a scope switch.
type Snapshot struct {
	Scope string
	Cards []models.Card
}

// Subscription is a live change-feed registration. Cancel is synchronous:
// no emission is delivered after it returns.
type Subscription interface {
	Cancel()
}
