package bot

import (
	"fmt"
	"log"
	"sync"

	"github.com/Adrien7782/BankVocabulary/internal/app"
	"github.com/Adrien7782/BankVocabulary/internal/auth"
	"github.com/Adrien7782/BankVocabulary/internal/mirror"
	"github.com/Adrien7782/BankVocabulary/internal/persist"
	"github.com/Adrien7782/BankVocabulary/internal/storage/cache"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

type BotSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAPI is the presentation layer: it owns one Workspace per chat and
// routes commands and free-text messages to the card, review and account
// handlers.
type TelegramAPI struct {
	bot     *tgbotapi.BotAPI
	log     *zap.Logger
	authDB  auth.QueryI
	cards   mirror.StoreI
	store   persist.Store
	cache   *cache.Cache
	cardsT  *CardsT
	review  *ReviewT
	account *AccountT

	mu         sync.Mutex
	workspaces map[int64]*app.Workspace
}

func NewTelegramAPI(botToken, env string, authDB auth.QueryI, cards mirror.StoreI, store persist.Store, c *cache.Cache, log *zap.Logger) (*TelegramAPI, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}

	bot.Debug = env == "development"

	t := &TelegramAPI{
		bot:        bot,
		log:        log,
		authDB:     authDB,
		cards:      cards,
		store:      store,
		cache:      c,
		workspaces: make(map[int64]*app.Workspace),
	}
	t.cardsT = NewCardsAPI(bot, c)
	t.review = NewReviewAPI(bot)
	t.account = NewAccountAPI(bot)

	return t, nil
}

func (t *TelegramAPI) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := t.bot.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		if update.Message.IsCommand() {
			t.handleCommand(update.Message)
		} else {
			t.handleMessage(update.Message)
		}
	}
}

// workspace returns the chat's component graph, building it on first use.
func (t *TelegramAPI) workspace(chatID int64) *app.Workspace {
	t.mu.Lock()
	if ws, ok := t.workspaces[chatID]; ok {
		t.mu.Unlock()
		return ws
	}
	t.mu.Unlock()

	identity := auth.NewProvider(t.authDB, t.log)
	store := persist.Prefixed(t.store, fmt.Sprintf("chat/%d/", chatID))
	ws := app.New(identity, t.cards, store, t.log, func(err error) {
		msg := tgbotapi.NewMessage(chatID, "⚠️ Card sync failed: "+err.Error())
		sendMessage(t.bot, msg)
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	if existing, ok := t.workspaces[chatID]; ok {
		ws.Close()
		return existing
	}
	t.workspaces[chatID] = ws
	return ws
}

// ChatIDs lists the chats with an active workspace, for the reminder job.
func (t *TelegramAPI) ChatIDs() []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]int64, 0, len(t.workspaces))
	for id := range t.workspaces {
		ids = append(ids, id)
	}
	return ids
}

func (t *TelegramAPI) SendStudyReminder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "📚 Time to review your cards! Start with /test 5")
	_, err := t.bot.Send(msg)
	return err
}

func sendMessage(bot BotSender, msg tgbotapi.Chattable) {
	if _, err := bot.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
