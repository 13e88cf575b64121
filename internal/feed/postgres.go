package feed

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/Adrien7782/BankVocabulary/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type QueryI interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

// CardStore is the remote document store for per-user card collections. It
// owns card identity (UUID ids) and pushes a full snapshot to every
// subscriber of a scope after each successful mutation, newest card first.
type CardStore struct {
	db  QueryI
	log *zap.Logger

	mu      sync.Mutex
	subs    map[string]map[int]func(Snapshot)
	nextSub int
}

func NewCardStore(db QueryI, log *zap.Logger) *CardStore {
	return &CardStore{
		db:   db,
		log:  log,
		subs: make(map[string]map[int]func(Snapshot)),
	}
}

func (s *CardStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS cards (
            id TEXT PRIMARY KEY,
            owner_id TEXT NOT NULL,
            front TEXT NOT NULL,
            back TEXT NOT NULL,
            flipped BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to ensure cards schema: %w", err)
	}
	return nil
}

// Subscribe registers fn for the scope's change feed and delivers the
// current collection immediately.
func (s *CardStore) Subscribe(scope string, fn func(Snapshot)) (Subscription, error) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	if s.subs[scope] == nil {
		s.subs[scope] = make(map[int]func(Snapshot))
	}
	s.subs[scope][id] = fn
	s.mu.Unlock()

	sub := &cardSub{store: s, scope: scope, id: id}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	cards, err := s.list(ctx, scope)
	if err != nil {
		sub.Cancel()
		return nil, err
	}
	fn(Snapshot{Scope: scope, Cards: cards})

	return sub, nil
}

func (s *CardStore) CreateCard(ctx context.Context, scope, front, back string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (id, owner_id, front, back, flipped) VALUES ($1, $2, $3, $4, FALSE)`,
		uuid.NewString(), scope, front, back,
	)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	s.emit(scope)
	return nil
}

func (s *CardStore) SetFlipped(ctx context.Context, scope, id string, flipped bool) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE cards SET flipped = $1 WHERE id = $2 AND owner_id = $3`,
		flipped, id, scope,
	)
	if err != nil {
		return fmt.Errorf("failed to update card %q: %w", id, err)
	}

	s.emit(scope)
	return nil
}

func (s *CardStore) DeleteCard(ctx context.Context, scope, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM cards WHERE id = $1 AND owner_id = $2`,
		id, scope,
	)
	if err != nil {
		return fmt.Errorf("failed to delete card %q: %w", id, err)
	}

	s.emit(scope)
	return nil
}

func (s *CardStore) list(ctx context.Context, scope string) ([]models.Card, error) {
	var cards []models.Card
	err := s.db.SelectContext(ctx, &cards,
		`SELECT id, front, back, flipped, created_at FROM cards WHERE owner_id = $1 ORDER BY created_at DESC, id`,
		scope,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	return cards, nil
}

// emit queries the scope's full collection and fans it out to the scope's
// current subscribers.
func (s *CardStore) emit(scope string) {
	s.mu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs[scope]))
	for _, fn := range s.subs[scope] {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	if len(fns) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cards, err := s.list(ctx, scope)
	if err != nil {
		s.log.Warn("failed to build snapshot", zap.String("scope", scope), zap.Error(err))
		return
	}

	snapshot := Snapshot{Scope: scope, Cards: cards}
	for _, fn := range fns {
		fn(snapshot)
	}
}

type cardSub struct {
	store *CardStore
	scope string
	id    int
}

func (c *cardSub) Cancel() {
	c.store.mu.Lock()
	defer c.store.mu.Unlock()
	delete(c.store.subs[c.scope], c.id)
}
