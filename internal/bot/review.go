package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Adrien7782/BankVocabulary/internal/app"
	"github.com/Adrien7782/BankVocabulary/internal/session"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const defaultTestSize = 5

// ReviewT handles review sessions: starting a test, grading free-text
// answers and browsing past results.
type ReviewT struct {
	bot BotSender
}

func NewReviewAPI(bot BotSender) *ReviewT {
	return &ReviewT{
		bot: bot,
	}
}

func (t *ReviewT) startTest(message *tgbotapi.Message, ws *app.Workspace) {
	requested := defaultTestSize
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /test N")
			sendMessage(t.bot, msg)
			return
		}
		requested = n
	}

	pool := ws.Mirror.Cards()
	ws.Engine.Start(pool, requested)

	if ws.Engine.State() == session.StateFinished {
		msg := tgbotapi.NewMessage(message.Chat.ID, "No cards to review yet. Use /add first.")
		sendMessage(t.bot, msg)
		return
	}

	t.sendPrompt(message.Chat.ID, ws)
}

func (t *ReviewT) handleAnswer(message *tgbotapi.Message, ws *app.Workspace) {
	ws.Engine.SubmitAnswer(message.Text)

	q, ok := ws.Engine.Current()
	if !ok {
		return
	}

	var feedback string
	if q.Correct {
		feedback = "✅ Correct!"
	} else {
		feedback = fmt.Sprintf("❌ Not quite. The answer was: %s", q.ExpectedText())
	}
	sendMessage(t.bot, tgbotapi.NewMessage(message.Chat.ID, feedback))

	ws.Engine.NextCard()

	if ws.Engine.State() == session.StateFinished {
		t.sendSummary(message.Chat.ID, ws)
		return
	}

	t.sendPrompt(message.Chat.ID, ws)
}

func (t *ReviewT) history(message *tgbotapi.Message, ws *app.Workspace) {
	entries := ws.Ledger.Entries()
	if len(entries) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "No finished sessions yet. Try /test")
		sendMessage(t.bot, msg)
		return
	}

	var sb strings.Builder
	sb.WriteString("📜 Past sessions:\n")
	for i, entry := range entries {
		sb.WriteString(fmt.Sprintf("%d. %s — %d/%d\n",
			i+1, entry.CreatedAt.Format("Jan 2 15:04"), entry.Score, entry.Size))
	}
	sb.WriteString("\nUse /replay N to look at one again.")

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	sendMessage(t.bot, msg)
}

func (t *ReviewT) replay(message *tgbotapi.Message, ws *app.Workspace) {
	n, err := strconv.Atoi(strings.TrimSpace(message.CommandArguments()))
	if err != nil || n < 1 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /replay N (number from /history)")
		sendMessage(t.bot, msg)
		return
	}

	entry, ok := ws.Ledger.Entry(n - 1)
	if !ok {
		msg := tgbotapi.NewMessage(message.Chat.ID, "No session with that number.")
		sendMessage(t.bot, msg)
		return
	}

	ws.Engine.Replay(entry)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔁 Session from %s — score %d/%d\n",
		entry.CreatedAt.Format("Jan 2 15:04"), entry.Score, entry.Size))
	for i, card := range entry.Cards {
		sb.WriteString(fmt.Sprintf("%d. %s — %s\n", i+1, card.Front, card.Back))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	sendMessage(t.bot, msg)
}

func (t *ReviewT) sendPrompt(chatID int64, ws *app.Workspace) {
	q, ok := ws.Engine.Current()
	if !ok {
		return
	}

	text := fmt.Sprintf("❓ Question %d/%d: translate\n\n*%s*",
		ws.Engine.Index()+1, ws.Engine.Size(), q.PromptText())

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "markdown"
	sendMessage(t.bot, msg)
}

func (t *ReviewT) sendSummary(chatID int64, ws *app.Workspace) {
	result, ok := ws.Engine.Result()
	if !ok {
		return
	}

	text := fmt.Sprintf("🏁 Session finished! Score: %d/%d\n\nSee /history for your last results.",
		result.Score, result.Size)

	msg := tgbotapi.NewMessage(chatID, text)
	sendMessage(t.bot, msg)
}
