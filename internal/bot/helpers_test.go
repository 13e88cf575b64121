package bot

import (
	"context"
	"testing"

	"github.com/Adrien7782/BankVocabulary/internal/app"
	"github.com/Adrien7782/BankVocabulary/internal/auth"
	mock_bot "github.com/Adrien7782/BankVocabulary/internal/bot/mock"
	"github.com/Adrien7782/BankVocabulary/internal/feed"
	"github.com/Adrien7782/BankVocabulary/internal/storage/kv"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubFeed struct{}

func (stubFeed) Subscribe(scope string, fn func(feed.Snapshot)) (feed.Subscription, error) {
	fn(feed.Snapshot{Scope: scope})
	return stubSub{}, nil
}

func (stubFeed) CreateCard(context.Context, string, string, string) error { return nil }

func (stubFeed) SetFlipped(context.Context, string, string, bool) error { return nil }

func (stubFeed) DeleteCard(context.Context, string, string) error { return nil }

type stubSub struct{}

func (stubSub) Cancel() {}

// newTestWorkspace builds an anonymous workspace seeded with the sample deck.
func newTestWorkspace(t *testing.T) *app.Workspace {
	t.Helper()
	return newTestWorkspaceWithAuth(t, nil)
}

func newTestWorkspaceWithAuth(t *testing.T, db auth.QueryI) *app.Workspace {
	t.Helper()

	log := zap.NewNop()
	ws := app.New(auth.NewProvider(db, log), stubFeed{}, kv.NewMemory(), log, nil)
	t.Cleanup(ws.Close)
	return ws
}

const testChatID int64 = 123

func command(cmd, args string) *tgbotapi.Message {
	text := "/" + cmd
	if args != "" {
		text += " " + args
	}
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: testChatID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{
			{Type: "bot_command", Offset: 0, Length: len(cmd) + 1},
		},
	}
}

func plainMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: testChatID},
		Text: text,
	}
}

func sentTexts(t *testing.T, bot *mock_bot.MockBot) []string {
	t.Helper()

	texts := make([]string, 0, len(bot.SentMessages))
	for _, sent := range bot.SentMessages {
		msg, ok := sent.(tgbotapi.MessageConfig)
		require.True(t, ok, "unexpected chattable type %T", sent)
		texts = append(texts, msg.Text)
	}
	return texts
}

func lastText(t *testing.T, bot *mock_bot.MockBot) string {
	t.Helper()

	texts := sentTexts(t, bot)
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}
