package mirror

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Adrien7782/BankVocabulary/internal/feed"
	"github.com/Adrien7782/BankVocabulary/internal/models"
	"go.uber.org/zap"
)

type StoreI interface {
	Subscribe(scope string, fn func(feed.Snapshot)) (feed.Subscription, error)
	CreateCard(ctx context.Context, scope, front, back string) error
	SetFlipped(ctx context.Context, scope, id string, flipped bool) error
	DeleteCard(ctx context.Context, scope, id string) error
}

const mutationTimeout = 10 * time.Second

// Mirror is the authoritative local view of the active card collection.
//
// In remote mode the view changes only when a snapshot arrives from the
// change feed; Add/Toggle/Delete issue fire-and-forget mutations and never
// touch the view directly. In local (anonymous) mode the mirror owns the
// cards outright, generates incrementing ids, and exposes its state to a
// persistence adapter.
type Mirror struct {
	store StoreI
	log   *zap.Logger

	mu          sync.Mutex
	scope       string
	local       bool
	sub         feed.Subscription
	cards       []models.Card
	nextID      int
	errs        chan error
	watchers    map[int]func()
	nextWatcher int
	now         func() time.Time
}

func New(store StoreI, log *zap.Logger) *Mirror {
	return &Mirror{
		store:    store,
		log:      log,
		local:    true,
		errs:     make(chan error, 16),
		watchers: make(map[int]func()),
		now:      time.Now,
	}
}

// Subscribe re-points the mirror at the change feed for scope. Any prior
// subscription is cancelled first and the view is emptied, so a previous
// scope's cards are never observable under the new one.
func (m *Mirror) Subscribe(scope string) error {
	m.mu.Lock()
	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
	m.cards = nil
	m.scope = scope
	m.local = false
	m.mu.Unlock()

	sub, err := m.store.Subscribe(scope, m.applySnapshot)
	if err != nil {
		return err
	}

	m.mu.Lock()
	if m.scope == scope {
		m.sub = sub
	} else {
		sub.Cancel()
	}
	m.mu.Unlock()

	return nil
}

// Unsubscribe cancels the active subscription, if any.
func (m *Mirror) Unsubscribe() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
}

// GoLocal switches the mirror to anonymous mode, seeding it with restored
// cards. Flipped is forced false and the id counter continues past the
// largest restored numeric id.
func (m *Mirror) GoLocal(cards []models.Card) {
	m.mu.Lock()
	if m.sub != nil {
		m.sub.Cancel()
		m.sub = nil
	}
	m.scope = ""
	m.local = true

	restored := make([]models.Card, 0, len(cards))
	maxID := 0
	for _, card := range cards {
		card.Flipped = false
		restored = append(restored, card)
		if n, err := strconv.Atoi(card.ID); err == nil && n > maxID {
			maxID = n
		}
	}
	m.cards = restored
	m.nextID = maxID
	m.mu.Unlock()

	m.notify()
}

// Clear empties the view without changing mode or subscription state.
func (m *Mirror) Clear() {
	m.mu.Lock()
	m.cards = nil
	m.mu.Unlock()

	m.notify()
}

func (m *Mirror) Cards() []models.Card {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.Card(nil), m.cards...)
}

// Add creates a card. Empty-after-trim fields are rejected as a no-op and
// no request is issued.
func (m *Mirror) Add(front, back string) {
	front = strings.TrimSpace(front)
	back = strings.TrimSpace(back)
	if front == "" || back == "" {
		return
	}

	m.mu.Lock()
	if m.local {
		m.nextID++
		card := models.Card{
			ID:        strconv.Itoa(m.nextID),
			Front:     front,
			Back:      back,
			CreatedAt: m.now(),
		}
		m.cards = append([]models.Card{card}, m.cards...)
		m.mu.Unlock()
		m.notify()
		return
	}
	scope := m.scope
	m.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		if err := m.store.CreateCard(ctx, scope, front, back); err != nil {
			m.reportErr(err)
		}
	}()
}

// Toggle flips the display side of the card with the given id.
func (m *Mirror) Toggle(id string) {
	m.mu.Lock()
	if m.local {
		for i := range m.cards {
			if m.cards[i].ID == id {
				m.cards[i].Flipped = !m.cards[i].Flipped
				break
			}
		}
		m.mu.Unlock()
		m.notify()
		return
	}

	scope := m.scope
	flipped := false
	found := false
	for _, card := range m.cards {
		if card.ID == id {
			flipped = !card.Flipped
			found = true
			break
		}
	}
	m.mu.Unlock()

	if !found {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		if err := m.store.SetFlipped(ctx, scope, id, flipped); err != nil {
			m.reportErr(err)
		}
	}()
}

// Delete removes the card with the given id.
func (m *Mirror) Delete(id string) {
	m.mu.Lock()
	if m.local {
		for i := range m.cards {
			if m.cards[i].ID == id {
				m.cards = append(m.cards[:i], m.cards[i+1:]...)
				break
			}
		}
		m.mu.Unlock()
		m.notify()
		return
	}
	scope := m.scope
	m.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), mutationTimeout)
		defer cancel()
		if err := m.store.DeleteCard(ctx, scope, id); err != nil {
			m.reportErr(err)
		}
	}()
}

// Errors exposes remote mutation failures. The mirror does not retry or
// roll anything back; the view stays whatever the last snapshot said.
func (m *Mirror) Errors() <-chan error {
	return m.errs
}

func (m *Mirror) Watch(fn func()) (cancel func()) {
	m.mu.Lock()
	id := m.nextWatcher
	m.nextWatcher++
	m.watchers[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.watchers, id)
		m.mu.Unlock()
	}
}

func (m *Mirror) MarshalState() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return json.Marshal(m.cards)
}

// applySnapshot replaces the whole view with a feed emission. Emissions
// tagged with a scope other than the active one are dropped; this is what
// makes a cancelled subscription's in-flight snapshots harmless.
func (m *Mirror) applySnapshot(snapshot feed.Snapshot) {
	m.mu.Lock()
	if m.local || snapshot.Scope != m.scope {
		m.mu.Unlock()
		return
	}

	cards := append([]models.Card(nil), snapshot.Cards...)
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].CreatedAt.After(cards[j].CreatedAt)
	})
	m.cards = cards
	m.mu.Unlock()

	m.notify()
}

func (m *Mirror) reportErr(err error) {
	select {
	case m.errs <- err:
	default:
		m.log.Warn("sync error dropped, channel full", zap.Error(err))
	}
}

func (m *Mirror) notify() {
	m.mu.Lock()
	fns := make([]func(), 0, len(m.watchers))
	for _, fn := range m.watchers {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
