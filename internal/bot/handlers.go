package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (t *TelegramAPI) handleCommand(message *tgbotapi.Message) {
	ws := t.workspace(message.Chat.ID)

	switch message.Command() {
	case "start":
		t.handleStartCommand(message)
	case "help":
		t.handleHelpCommand(message)
	case "login":
		t.account.login(message, ws)
	case "register":
		t.account.register(message, ws)
	case "logout":
		t.account.logout(message, ws)
	case "verify":
		t.account.verify(message, ws)
	case "add":
		t.cardsT.startAdd(message)
	case "cancel":
		t.cardsT.cancelAdd(message)
	case "cards":
		t.cardsT.list(message, ws)
	case "flip":
		t.cardsT.flip(message, ws)
	case "delete":
		t.cardsT.remove(message, ws)
	case "import":
		t.cardsT.importFile(message, ws)
	case "test":
		t.review.startTest(message, ws)
	case "history":
		t.review.history(message, ws)
	case "replay":
		t.review.replay(message, ws)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Use /help")
		sendMessage(t.bot, msg)
	}
}

func (t *TelegramAPI) handleMessage(message *tgbotapi.Message) {
	ws := t.workspace(message.Chat.ID)

	// an in-flight add-card draft takes priority over session answers
	if _, pending := t.cache.GetDraft(message.Chat.ID); pending {
		t.cardsT.continueDraft(message, ws)
		return
	}

	if _, ok := ws.Engine.Current(); ok {
		t.review.handleAnswer(message, ws)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, "I didn't get that. Use /help for commands.")
	sendMessage(t.bot, msg)
}

func (t *TelegramAPI) handleStartCommand(message *tgbotapi.Message) {
	welcomeText := "👋 Hi! I'm your vocabulary flashcards trainer.\n\n" +
		"✨ What I can do:\n" +
		"• 🗂 Keep your personal card collection\n" +
		"• 🧠 Run review sessions that grade your recall\n" +
		"• 📜 Remember your last few session scores\n" +
		"• 🔐 Sync your cards across devices once you /login\n\n" +
		"Without an account your cards stay on this device only.\n" +
		"Use /help to see all commands."

	msg := tgbotapi.NewMessage(message.Chat.ID, welcomeText)
	sendMessage(t.bot, msg)
}

func (t *TelegramAPI) handleHelpCommand(message *tgbotapi.Message) {
	helpText := `📚 Commands:
/add — add a card (front, then back)
/cancel — abandon the add-card flow
/cards — list your cards
/flip N — flip card N
/delete N — delete card N
/import PATH — import cards from an xlsx file

/test N — review session over N random cards
/history — past session results
/replay N — replay a past result

/register EMAIL PASSWORD — create an account
/login EMAIL PASSWORD — sign in (syncs your cards)
/verify — request an email verification token
/logout — back to the local-only deck`

	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)
	sendMessage(t.bot, msg)
}
