package cache

import "sync"

// DraftStage tracks where a chat is in the two-step add-card flow.
type DraftStage int

const (
	StageFront DraftStage = iota
	StageBack
)

type CardDraft struct {
	Front string
	Stage DraftStage
}

// Cache keeps per-chat conversational state that has no business living in
// the session engine: the in-flight add-card draft.
type Cache struct {
	mu     sync.Mutex
	drafts map[int64]CardDraft
}

func NewCache() *Cache {
	return &Cache{
		drafts: make(map[int64]CardDraft),
	}
}

func (c *Cache) SetDraft(chatID int64, draft CardDraft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.drafts[chatID] = draft
}

func (c *Cache) GetDraft(chatID int64) (CardDraft, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	draft, exists := c.drafts[chatID]
	return draft, exists
}

func (c *Cache) DeleteDraft(chatID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.drafts, chatID)
}
