package bot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Adrien7782/BankVocabulary/internal/app"
	"github.com/Adrien7782/BankVocabulary/internal/importer"
	"github.com/Adrien7782/BankVocabulary/internal/models"
	"github.com/Adrien7782/BankVocabulary/internal/storage/cache"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// CardsT handles the card collection commands.
type CardsT struct {
	bot   BotSender
	cache *cache.Cache
}

func NewCardsAPI(bot BotSender, cache *cache.Cache) *CardsT {
	return &CardsT{
		bot:   bot,
		cache: cache,
	}
}

func (t *CardsT) startAdd(message *tgbotapi.Message) {
	t.cache.SetDraft(message.Chat.ID, cache.CardDraft{Stage: cache.StageFront})

	msg := tgbotapi.NewMessage(message.Chat.ID, "✏️ Send the front of the card (the word to learn). /cancel to abort.")
	sendMessage(t.bot, msg)
}

func (t *CardsT) cancelAdd(message *tgbotapi.Message) {
	t.cache.DeleteDraft(message.Chat.ID)

	msg := tgbotapi.NewMessage(message.Chat.ID, "Add-card flow cancelled.")
	sendMessage(t.bot, msg)
}

func (t *CardsT) continueDraft(message *tgbotapi.Message, ws *app.Workspace) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	draft, exists := t.cache.GetDraft(chatID)
	if !exists {
		return
	}

	if text == "" {
		msg := tgbotapi.NewMessage(chatID, "That side can't be empty, try again.")
		sendMessage(t.bot, msg)
		return
	}

	switch draft.Stage {
	case cache.StageFront:
		draft.Front = text
		draft.Stage = cache.StageBack
		t.cache.SetDraft(chatID, draft)

		msg := tgbotapi.NewMessage(chatID, "Now send the back (the translation).")
		sendMessage(t.bot, msg)
	case cache.StageBack:
		t.cache.DeleteDraft(chatID)
		ws.Mirror.Add(draft.Front, text)

		msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("✅ Card saved: %s → %s", draft.Front, text))
		sendMessage(t.bot, msg)
	}
}

func (t *CardsT) list(message *tgbotapi.Message, ws *app.Workspace) {
	cards := ws.Mirror.Cards()
	if len(cards) == 0 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "No cards yet. Use /add to create one.")
		sendMessage(t.bot, msg)
		return
	}

	var sb strings.Builder
	sb.WriteString("🗂 Your cards:\n")
	for i, card := range cards {
		front, back := card.Front, card.Back
		if card.Flipped {
			front, back = back, front
		}
		sb.WriteString(fmt.Sprintf("%d. %s — %s\n", i+1, front, back))
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, sb.String())
	sendMessage(t.bot, msg)
}

func (t *CardsT) flip(message *tgbotapi.Message, ws *app.Workspace) {
	card, ok := t.cardByArgument(message, ws)
	if !ok {
		return
	}

	ws.Mirror.Toggle(card.ID)

	msg := tgbotapi.NewMessage(message.Chat.ID, "🔄 Card flipped.")
	sendMessage(t.bot, msg)
}

func (t *CardsT) remove(message *tgbotapi.Message, ws *app.Workspace) {
	card, ok := t.cardByArgument(message, ws)
	if !ok {
		return
	}

	ws.Mirror.Delete(card.ID)

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("🗑 Deleted: %s", card.Front))
	sendMessage(t.bot, msg)
}

func (t *CardsT) importFile(message *tgbotapi.Message, ws *app.Workspace) {
	path := strings.TrimSpace(message.CommandArguments())
	if path == "" {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /import PATH")
		sendMessage(t.bot, msg)
		return
	}

	pairs, err := importer.ReadPairs(path)
	if err != nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, "❌ Import failed: "+err.Error())
		sendMessage(t.bot, msg)
		return
	}

	for _, pair := range pairs {
		ws.Mirror.Add(pair.Front, pair.Back)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, fmt.Sprintf("📥 Imported %d cards.", len(pairs)))
	sendMessage(t.bot, msg)
}

// cardByArgument resolves the 1-based list index given as the command
// argument against the current card view.
func (t *CardsT) cardByArgument(message *tgbotapi.Message, ws *app.Workspace) (models.Card, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(message.CommandArguments()))
	if err != nil || n < 1 {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Give me the card number from /cards.")
		sendMessage(t.bot, msg)
		return models.Card{}, false
	}

	cards := ws.Mirror.Cards()
	if n > len(cards) {
		msg := tgbotapi.NewMessage(message.Chat.ID, "No card with that number.")
		sendMessage(t.bot, msg)
		return models.Card{}, false
	}

	return cards[n-1], true
}
