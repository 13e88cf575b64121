package scope

import (
	"context"
	"sync"
	"time"

	"github.com/Adrien7782/BankVocabulary/internal/history"
	"github.com/Adrien7782/BankVocabulary/internal/mirror"
	"github.com/Adrien7782/BankVocabulary/internal/models"
	"github.com/Adrien7782/BankVocabulary/internal/persist"
	"github.com/Adrien7782/BankVocabulary/internal/session"
	"go.uber.org/zap"
)

type IdentityI interface {
	Watch(fn func(*models.User)) (cancel func())
	Current() *models.User
}

const (
	anonScope    = "anon"
	anonCardsKey = "cards/anon"
	loadTimeout  = 5 * time.Second
)

func historyKey(scope string) string {
	if scope == "" {
		scope = anonScope
	}
	return "history/" + scope
}

// Manager is the only component allowed to change the active scope. It
// reacts to identity transitions by re-pointing the mirror's subscription
// and the ledger's storage key, in an order that guarantees no stale-scope
// data is ever observable: detach persistence, cancel the old subscription
// and clear derived state before anything of the new scope loads.
type Manager struct {
	identity IdentityI
	mirror   *mirror.Mirror
	ledger   *history.Ledger
	engine   *session.Engine
	store    persist.Store
	log      *zap.Logger

	mu          sync.Mutex
	scope       string
	started     bool
	historyAd   *persist.Adapter
	cardsAd     *persist.Adapter
	cancelWatch func()
}

func NewManager(identity IdentityI, m *mirror.Mirror, l *history.Ledger, e *session.Engine, store persist.Store, log *zap.Logger) *Manager {
	return &Manager{
		identity: identity,
		mirror:   m,
		ledger:   l,
		engine:   e,
		store:    store,
		log:      log,
	}
}

// Start wires the manager to the identity signal and applies the current
// user immediately.
func (m *Manager) Start() {
	m.cancelWatch = m.identity.Watch(m.apply)
	m.apply(m.identity.Current())
}

func (m *Manager) Stop() {
	if m.cancelWatch != nil {
		m.cancelWatch()
		m.cancelWatch = nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.detachLocked()
	m.mirror.Unsubscribe()
}

// Scope returns the active scope: "" when anonymous, otherwise the user id.
func (m *Manager) Scope() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scope
}

func (m *Manager) apply(user *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	target := ""
	if user != nil {
		target = user.ID
	}
	if m.started && target == m.scope {
		return
	}

	prior := m.scope
	hadPriorUser := m.started && prior != ""

	// Stop mirroring to the old keys before any state changes, so the old
	// scope's persisted data is never overwritten by the reset below.
	m.detachLocked()
	m.mirror.Unsubscribe()

	if hadPriorUser {
		// Leaving a signed-in user: their session, history and cards must
		// not leak into the next scope.
		m.engine.Reset()
		m.ledger.Clear()
		m.mirror.Clear()
	}

	m.scope = target
	m.started = true

	ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
	defer cancel()

	if target == "" {
		cards := persist.Load(ctx, m.store, anonCardsKey, []models.Card(nil))
		if cards == nil {
			// first run on this device, start from the sample deck
			cards = seedCards()
		}
		m.mirror.GoLocal(cards)
		m.cardsAd = persist.Attach(m.store, anonCardsKey, m.mirror, m.log)
	} else {
		if err := m.mirror.Subscribe(target); err != nil {
			m.log.Warn("failed to subscribe card feed", zap.String("scope", target), zap.Error(err))
		}
	}

	entries := persist.Load(ctx, m.store, historyKey(target), []models.SessionResult(nil))
	m.ledger.Restore(entries)
	m.historyAd = persist.Attach(m.store, historyKey(target), m.ledger, m.log)

	m.log.Info("scope changed", zap.String("from", scopeLabel(prior)), zap.String("to", scopeLabel(target)))
}

func (m *Manager) detachLocked() {
	if m.historyAd != nil {
		m.historyAd.Detach()
		m.historyAd = nil
	}
	if m.cardsAd != nil {
		m.cardsAd.Detach()
		m.cardsAd = nil
	}
}

func seedCards() []models.Card {
	now := time.Now()
	return []models.Card{
		{ID: "4", Front: "Compte courant", Back: "Checking account", CreatedAt: now},
		{ID: "3", Front: "Banque", Back: "Bank", CreatedAt: now},
		{ID: "2", Front: "Merci", Back: "Thank you", CreatedAt: now},
		{ID: "1", Front: "Bonjour", Back: "Hello", CreatedAt: now},
	}
}

func scopeLabel(scope string) string {
	if scope == "" {
		return anonScope
	}
	return scope
}
