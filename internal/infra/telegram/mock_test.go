package telegram

import (
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sentMessage struct {
	ChatID int64
	Text   string
}

// fakeBot feeds updates from a channel and records outgoing messages.
type fakeBot struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	sent    []sentMessage
	stopped bool
	notify  chan struct{}
}

func newFakeBot() *fakeBot {
	return &fakeBot{updates: make(chan tgbotapi.Update, 16), notify: make(chan struct{}, 64)}
}

func (f *fakeBot) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if ok {
		f.mu.Lock()
		f.sent = append(f.sent, sentMessage{ChatID: msg.ChatID, Text: msg.Text})
		f.mu.Unlock()
		f.notify <- struct{}{}
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMessage(nil), f.sent...)
}

func textUpdate(id int, chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{
		UpdateID: id,
		Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: chatID},
			Text: text,
		},
	}
}

func commandUpdate(id int, chatID int64, cmd string) tgbotapi.Update {
	u := textUpdate(id, chatID, "/"+cmd)
	u.Message.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(cmd) + 1}}
	return u
}
