package session

import (
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Adrien7782/BankVocabulary/internal/models"
	"go.uber.org/zap"
)

type State int

const (
	StateIdle State = iota
	StateInProgress
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInProgress:
		return "in_progress"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Side is the card side shown as the question prompt.
type Side int

const (
	SideFront Side = iota
	SideBack
)

// Question is the transient per-card state of an in-progress session. It
// lives only inside the engine; at session end the underlying cards are
// snapshotted into the result and the rest is discarded.
type Question struct {
	Card     models.Card
	Prompt   Side
	Revealed bool
	Correct  bool
	Answer   string
}

func (q Question) PromptText() string {
	if q.Prompt == SideFront {
		return q.Card.Front
	}
	return q.Card.Back
}

// ExpectedText is the side opposite the prompt, the answer being graded.
func (q Question) ExpectedText() string {
	if q.Prompt == SideFront {
		return q.Card.Back
	}
	return q.Card.Front
}

type HistoryI interface {
	Insert(result models.SessionResult)
	NextID() int
}

// Engine runs one review session at a time: sampling, per-question grading
// and finalization into an immutable result handed to the history ledger.
type Engine struct {
	mu      sync.Mutex
	history HistoryI
	rng     *rand.Rand
	now     func() time.Time
	log     *zap.Logger

	state     State
	questions []Question
	index     int
	score     int
	result    models.SessionResult
	hasResult bool
}

func NewEngine(history HistoryI, log *zap.Logger) *Engine {
	return &Engine{
		history: history,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
		log:     log,
		state:   StateIdle,
	}
}

// Start begins a fresh session over a random sample of the pool. A session
// already in progress is abandoned without being recorded. An empty pool
// finishes immediately with zero questions and score 0, and nothing is
// written to history.
func (e *Engine) Start(pool []models.Card, requested int) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()

	if len(pool) == 0 {
		e.state = StateFinished
		return
	}

	size := requested
	if size < 1 {
		size = 1
	}
	if size > len(pool) {
		size = len(pool)
	}

	perm := e.rng.Perm(len(pool))
	questions := make([]Question, 0, size)
	for _, idx := range perm[:size] {
		questions = append(questions, Question{Card: pool[idx]})
	}

	e.questions = questions
	e.state = StateInProgress
	e.rollPromptLocked()

	e.log.Debug("review session started",
		zap.Int("pool", len(pool)),
		zap.Int("requested", requested),
		zap.Int("size", size),
	)
}

// Replay loads a past result for read-only viewing: the question set is
// exactly the recorded cards in order, the score is preset and the session
// is immediately finished. Nothing is inserted into history again.
func (e *Engine) Replay(result models.SessionResult) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()

	questions := make([]Question, 0, len(result.Cards))
	for _, card := range result.Cards {
		questions = append(questions, Question{Card: card})
	}

	e.questions = questions
	e.score = result.Score
	e.result = result
	e.hasResult = true
	e.state = StateFinished
}

// SubmitAnswer grades the current question. Comparison is case-insensitive
// and ignores leading/trailing whitespace. Submitting on an already revealed
// question is a no-op.
func (e *Engine) SubmitAnswer(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInProgress {
		return
	}

	q := &e.questions[e.index]
	if q.Revealed {
		return
	}

	q.Answer = text
	q.Revealed = true
	if normalize(text) == normalize(q.ExpectedText()) {
		q.Correct = true
		e.score++
	}
}

// NextCard advances to the next question with a fresh prompt side, or
// finalizes the session when the current question is the last.
func (e *Engine) NextCard() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateInProgress {
		return
	}

	if e.index == len(e.questions)-1 {
		e.finalizeLocked()
		return
	}

	e.index++
	e.rollPromptLocked()
}

// Reset returns the engine to idle, discarding any session state.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLocked()
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Engine) Score() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.score
}

func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.questions)
}

func (e *Engine) Index() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.index
}

// Current returns the active question while a session is in progress.
func (e *Engine) Current() (Question, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != StateInProgress || e.index >= len(e.questions) {
		return Question{}, false
	}
	return e.questions[e.index], true
}

// Result returns the finalized result of the last finished session.
func (e *Engine) Result() (models.SessionResult, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result, e.hasResult
}

func (e *Engine) resetLocked() {
	e.state = StateIdle
	e.questions = nil
	e.index = 0
	e.score = 0
	e.result = models.SessionResult{}
	e.hasResult = false
}

func (e *Engine) rollPromptLocked() {
	if e.rng.Intn(2) == 0 {
		e.questions[e.index].Prompt = SideFront
	} else {
		e.questions[e.index].Prompt = SideBack
	}
}

func (e *Engine) finalizeLocked() {
	if e.state == StateFinished {
		return
	}

	cards := make([]models.Card, len(e.questions))
	for i, q := range e.questions {
		card := q.Card
		card.Flipped = false
		cards[i] = card
	}

	e.result = models.SessionResult{
		ID:        e.history.NextID(),
		CreatedAt: e.now(),
		Size:      len(cards),
		Score:     e.score,
		Cards:     cards,
	}
	e.hasResult = true
	e.state = StateFinished

	e.history.Insert(e.result)

	e.log.Debug("review session finished",
		zap.Int("result_id", e.result.ID),
		zap.Int("size", e.result.Size),
		zap.Int("score", e.result.Score),
	)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
