// Package telegram serves the dialogue over the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/sync/semaphore"

	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/dialogue"
	"github.com/3pknai/LLM-based-educational-bot-with-RAG/internal/logger"
)

// MaxMessageLength is Telegram's limit on one text message.
const MaxMessageLength = 4096

// Handler answers one incoming message.
type Handler interface {
	Handle(ctx context.Context, in dialogue.Incoming) []dialogue.Reply
}

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot dispatches updates to a Handler. Messages of one user are handled in
// arrival order; at most Workers users are handled at once.
type Bot struct {
	api     API
	handler Handler
	sem     *semaphore.Weighted
	log     *logger.Logger

	mu     sync.Mutex
	queues map[int64][]*tgbotapi.Message
	wg     sync.WaitGroup
}

func New(api API, h Handler, workers int, log *logger.Logger) *Bot {
	if workers < 1 {
		workers = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Bot{
		api:     api,
		handler: h,
		sem:     semaphore.NewWeighted(int64(workers)),
		log:     log,
		queues:  make(map[int64][]*tgbotapi.Message),
	}
}

// Connect authenticates token against the Bot API.
func Connect(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	return api, nil
}

// Run long-polls api until ctx is done, then waits for in-flight messages.
func Run(ctx context.Context, api *tgbotapi.BotAPI, h Handler, workers int, log *logger.Logger) error {
	b := New(api, h, workers, log)
	b.log.Info("telegram bot started", "username", api.Self.UserName, "workers", workers)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			api.StopReceivingUpdates()
			b.Wait()
			b.log.Info("telegram bot stopped")
			return nil
		case upd, ok := <-updates:
			if !ok {
				b.Wait()
				return nil
			}
			b.Dispatch(ctx, upd)
		}
	}
}

// Dispatch queues a text message for its user.
func (b *Bot) Dispatch(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		return
	}

	b.mu.Lock()
	q, busy := b.queues[msg.From.ID]
	b.queues[msg.From.ID] = append(q, msg)
	b.mu.Unlock()

	if !busy {
		b.wg.Add(1)
		go b.drain(ctx, msg.From.ID)
	}
}

// Wait blocks until every queued message has been handled.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) drain(ctx context.Context, userID int64) {
	defer b.wg.Done()
	for {
		b.mu.Lock()
		q := b.queues[userID]
		if len(q) == 0 {
			delete(b.queues, userID)
			b.mu.Unlock()
			return
		}
		msg := q[0]
		b.queues[userID] = q[1:]
		b.mu.Unlock()

		if err := b.sem.Acquire(context.WithoutCancel(ctx), 1); err != nil {
			b.log.Error("acquire worker", "error", err)
			continue
		}
		b.handle(ctx, msg)
		b.sem.Release(1)
	}
}

func (b *Bot) handle(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	in := dialogue.Incoming{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		Text:     msg.Text,
		Typing: func() {
			if _, err := b.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
				b.log.Debug("send chat action", "error", err)
			}
		},
	}

	// Replies are delivered even if shutdown began mid-turn.
	for _, r := range b.handler.Handle(context.WithoutCancel(ctx), in) {
		if err := b.send(chatID, r); err != nil {
			b.log.Error("send reply", "user_id", msg.From.ID, "error", err)
		}
	}
}

func (b *Bot) send(chatID int64, r dialogue.Reply) error {
	markup := replyMarkup(r)

	if len(r.Photo) > 0 {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "progress.png", Bytes: r.Photo})
		photo.Caption = r.Text
		if markup != nil {
			photo.ReplyMarkup = markup
		}
		_, err := b.api.Send(photo)
		return err
	}

	parts := Split(r.Text, MaxMessageLength)
	for i, part := range parts {
		m := tgbotapi.NewMessage(chatID, part)
		if i == len(parts)-1 && markup != nil {
			m.ReplyMarkup = markup
		}
		if _, err := b.api.Send(m); err != nil {
			return err
		}
	}
	return nil
}

func replyMarkup(r dialogue.Reply) any {
	if r.RemoveKeyboard {
		return tgbotapi.NewRemoveKeyboard(true)
	}
	if len(r.Keyboard) == 0 {
		return nil
	}
	rows := make([][]tgbotapi.KeyboardButton, 0, len(r.Keyboard))
	for _, labels := range r.Keyboard {
		row := make([]tgbotapi.KeyboardButton, len(labels))
		for i, l := range labels {
			row[i] = tgbotapi.NewKeyboardButton(l)
		}
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(row...))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}

// Split cuts text into parts of at most limit characters, preferring line
// boundaries. Lines longer than limit are cut at the limit.
func Split(text string, limit int) []string {
	if text == "" {
		return []string{""}
	}
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var (
		parts []string
		cur   strings.Builder
		n     int
	)
	flush := func() {
		if s := strings.Trim(cur.String(), "\n"); s != "" {
			parts = append(parts, s)
		}
		cur.Reset()
		n = 0
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		runes := []rune(line)
		for len(runes) > limit {
			flush()
			parts = append(parts, string(runes[:limit]))
			runes = runes[limit:]
		}
		if n+len(runes) > limit {
			flush()
		}
		cur.WriteString(string(runes))
		n += len(runes)
	}
	flush()
	return parts
}
