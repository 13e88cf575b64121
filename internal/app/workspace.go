package app

import (
	"github.com/Adrien7782/BankVocabulary/internal/auth"
	"github.com/Adrien7782/BankVocabulary/internal/history"
	"github.com/Adrien7782/BankVocabulary/internal/mirror"
	"github.com/Adrien7782/BankVocabulary/internal/persist"
	"github.com/Adrien7782/BankVocabulary/internal/scope"
	"github.com/Adrien7782/BankVocabulary/internal/session"
	"go.uber.org/zap"
)

// Workspace is the per-user component graph: identity, card mirror, session
// engine, history ledger and the scope manager that keeps them consistent.
// The presentation layer creates one workspace per chat.
type Workspace struct {
	Auth   *auth.Provider
	Mirror *mirror.Mirror
	Ledger *history.Ledger
	Engine *session.Engine
	Scope  *scope.Manager
}

// New assembles and starts a workspace. store should already be namespaced
// to the owning chat; onSyncError, when non-nil, receives remote mutation
// failures from the mirror.
func New(identity *auth.Provider, cards mirror.StoreI, store persist.Store, log *zap.Logger, onSyncError func(error)) *Workspace {
	m := mirror.New(cards, log)
	ledger := history.NewLedger()
	engine := session.NewEngine(ledger, log)
	manager := scope.NewManager(identity, m, ledger, engine, store, log)

	go func() {
		for err := range m.Errors() {
			log.Warn("card sync failed", zap.Error(err))
			if onSyncError != nil {
				onSyncError(err)
			}
		}
	}()

	manager.Start()

	return &Workspace{
		Auth:   identity,
		Mirror: m,
		Ledger: ledger,
		Engine: engine,
		Scope:  manager,
	}
}

func (w *Workspace) Close() {
	w.Scope.Stop()
}
