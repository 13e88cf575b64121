package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/Adrien7782/BankVocabulary/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
)

type QueryI interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type userRow struct {
	ID           string `db:"id"`
	Email        string `db:"email"`
	PasswordHash string `db:"password_hash"`
	Verified     bool   `db:"verified"`
}

// Provider is the identity collaborator: it owns credentials and the
// current-user signal. The core only consumes the user handle and
// verification flag through Current and Watch.
type Provider struct {
	db  QueryI
	log *zap.Logger

	mu          sync.Mutex
	current     *models.User
	lastErr     string
	watchers    map[int]func(*models.User)
	nextWatcher int
}

func NewProvider(db QueryI, log *zap.Logger) *Provider {
	return &Provider{
		db:       db,
		log:      log,
		watchers: make(map[int]func(*models.User)),
	}
}

func (p *Provider) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id TEXT PRIMARY KEY,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            verified BOOLEAN NOT NULL DEFAULT FALSE,
            verification_token TEXT
        )
    `)
	if err != nil {
		return fmt.Errorf("failed to ensure users schema: %w", err)
	}
	return nil
}

// SignIn authenticates email/password and, on success, publishes the user
// to all watchers. A failure leaves a session-local message readable via
// Err, cleared on the next attempt.
func (p *Provider) SignIn(ctx context.Context, email, password string) error {
	p.setErr("")

	var row userRow
	err := p.db.GetContext(ctx, &row,
		`SELECT id, email, password_hash, verified FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		p.setErr("invalid email or password")
		return ErrInvalidCredentials
	}
	if err != nil {
		p.setErr("sign-in unavailable, try again")
		return fmt.Errorf("failed to look up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(password)) != nil {
		p.setErr("invalid email or password")
		return ErrInvalidCredentials
	}

	user := &models.User{ID: row.ID, Email: row.Email, Verified: row.Verified}

	p.mu.Lock()
	p.current = user
	p.mu.Unlock()

	p.log.Info("user signed in", zap.String("user_id", user.ID))
	p.publish()
	return nil
}

// Register creates an account. It does not sign the user in.
func (p *Provider) Register(ctx context.Context, email, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	var exists int
	err = p.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM users WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if exists > 0 {
		return ErrEmailTaken
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, verified) VALUES ($1, $2, $3, FALSE)`,
		uuid.NewString(), email, string(hash),
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// SendVerification issues a fresh verification token for the current user.
// Delivery of the token (email) is outside this provider; a no-op when
// nobody is signed in.
func (p *Provider) SendVerification(ctx context.Context) error {
	p.mu.Lock()
	user := p.current
	p.mu.Unlock()
	if user == nil {
		return nil
	}

	token := uuid.NewString()
	_, err := p.db.ExecContext(ctx,
		`UPDATE users SET verification_token = $1 WHERE id = $2`, token, user.ID)
	if err != nil {
		return fmt.Errorf("failed to issue verification token: %w", err)
	}

	p.log.Info("verification token issued", zap.String("user_id", user.ID))
	return nil
}

// Verify consumes a verification token and marks the account verified.
func (p *Provider) Verify(ctx context.Context, token string) error {
	var row userRow
	err := p.db.GetContext(ctx, &row,
		`SELECT id, email, password_hash, verified FROM users WHERE verification_token = $1`, token)
	if errors.Is(err, sql.ErrNoRows) {
		return errors.New("unknown verification token")
	}
	if err != nil {
		return fmt.Errorf("failed to look up token: %w", err)
	}

	_, err = p.db.ExecContext(ctx,
		`UPDATE users SET verified = TRUE, verification_token = NULL WHERE id = $1`, row.ID)
	if err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}

	p.mu.Lock()
	changed := p.current != nil && p.current.ID == row.ID
	if changed {
		p.current.Verified = true
	}
	p.mu.Unlock()

	if changed {
		p.publish()
	}
	return nil
}

func (p *Provider) Logout(_ context.Context) error {
	p.mu.Lock()
	wasSignedIn := p.current != nil
	p.current = nil
	p.mu.Unlock()

	if wasSignedIn {
		p.publish()
	}
	return nil
}

// Current returns a copy of the signed-in user, or nil when anonymous.
func (p *Provider) Current() *models.User {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	user := *p.current
	return &user
}

// Err is the user-visible message from the last failed sign-in attempt.
func (p *Provider) Err() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

// Watch registers fn for current-user changes.
func (p *Provider) Watch(fn func(*models.User)) (cancel func()) {
	p.mu.Lock()
	id := p.nextWatcher
	p.nextWatcher++
	p.watchers[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.watchers, id)
		p.mu.Unlock()
	}
}

func (p *Provider) setErr(msg string) {
	p.mu.Lock()
	p.lastErr = msg
	p.mu.Unlock()
}

func (p *Provider) publish() {
	p.mu.Lock()
	user := p.current
	if user != nil {
		copied := *user
		user = &copied
	}
	fns := make([]func(*models.User), 0, len(p.watchers))
	for _, fn := range p.watchers {
		fns = append(fns, fn)
	}
	p.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}
