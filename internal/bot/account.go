package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Adrien7782/BankVocabulary/internal/app"
	"github.com/Adrien7782/BankVocabulary/internal/auth"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const authTimeout = 10 * time.Second

// AccountT handles sign-in, registration and verification. The scope
// manager reacts to the resulting identity transitions on its own.
type AccountT struct {
	bot BotSender
}

func NewAccountAPI(bot BotSender) *AccountT {
	return &AccountT{
		bot: bot,
	}
}

func (t *AccountT) login(message *tgbotapi.Message, ws *app.Workspace) {
	email, password, ok := credentials(message)
	if !ok {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /login EMAIL PASSWORD")
		sendMessage(t.bot, msg)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	if err := ws.Auth.SignIn(ctx, email, password); err != nil {
		text := "❌ Sign-in failed, try again later."
		if errors.Is(err, auth.ErrInvalidCredentials) {
			text = "❌ " + ws.Auth.Err()
		}
		sendMessage(t.bot, tgbotapi.NewMessage(message.Chat.ID, text))
		return
	}

	user := ws.Auth.Current()
	text := fmt.Sprintf("🔓 Signed in as %s. Your cards are now synced.", user.Email)
	if !user.Verified {
		text += "\n✉️ Your email isn't verified yet — use /verify."
	}
	sendMessage(t.bot, tgbotapi.NewMessage(message.Chat.ID, text))
}

func (t *AccountT) register(message *tgbotapi.Message, ws *app.Workspace) {
	email, password, ok := credentials(message)
	if !ok {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Usage: /register EMAIL PASSWORD")
		sendMessage(t.bot, msg)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	if err := ws.Auth.Register(ctx, email, password); err != nil {
		text := "❌ Registration failed, try again later."
		if errors.Is(err, auth.ErrEmailTaken) {
			text = "❌ That email is already registered."
		}
		sendMessage(t.bot, tgbotapi.NewMessage(message.Chat.ID, text))
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "✅ Account created. Sign in with /login")
	sendMessage(t.bot, msg)
}

func (t *AccountT) logout(message *tgbotapi.Message, ws *app.Workspace) {
	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	if err := ws.Auth.Logout(ctx); err != nil {
		sendMessage(t.bot, tgbotapi.NewMessage(message.Chat.ID, "❌ Logout failed."))
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "🔒 Signed out. Back to the local-only deck.")
	sendMessage(t.bot, msg)
}

func (t *AccountT) verify(message *tgbotapi.Message, ws *app.Workspace) {
	if ws.Auth.Current() == nil {
		msg := tgbotapi.NewMessage(message.Chat.ID, "Sign in first with /login")
		sendMessage(t.bot, msg)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), authTimeout)
	defer cancel()

	if err := ws.Auth.SendVerification(ctx); err != nil {
		sendMessage(t.bot, tgbotapi.NewMessage(message.Chat.ID, "❌ Couldn't issue a verification token."))
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "✉️ Verification token issued, check your inbox.")
	sendMessage(t.bot, msg)
}

func credentials(message *tgbotapi.Message) (email, password string, ok bool) {
	parts := strings.Fields(message.CommandArguments())
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
