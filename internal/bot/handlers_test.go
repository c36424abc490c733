package bot

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"blackjackd/internal/config"
	"blackjackd/internal/database"
	"blackjackd/internal/game"
	"blackjackd/internal/player"
	"blackjackd/internal/table"
)

type fakeSender struct {
	mu       sync.Mutex
	messages []tgbotapi.MessageConfig
	answers  []tgbotapi.CallbackConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.messages = append(f.messages, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cb, ok := c.(tgbotapi.CallbackConfig); ok {
		f.answers = append(f.answers, cb)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeSender) last(t *testing.T) string {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		t.Fatal("no messages sent")
	}
	return f.messages[len(f.messages)-1].Text
}

func stack(ranks ...game.Rank) *game.Shoe {
	cards := make([]game.Card, 0, len(ranks))
	for i, r := range ranks {
		cards = append(cards, game.NewCard(r, game.Suits[i%4]))
	}
	return game.NewStackedShoe(1, cards...)
}

func newHandler(t *testing.T, shoes ...*game.Shoe) (*Handler, *fakeSender) {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "bot.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &config.Config{
		StartBalance:  1000,
		DefaultBet:    100,
		MinBet:        10,
		MaxBet:        1000,
		DeckCount:     1,
		BlackjackPays: 1.5,
	}
	n := 0
	tbl := table.New(cfg, player.NewRepository(db.DB), table.WithRoundOptions(func() []game.Option {
		if n >= len(shoes) {
			return nil
		}
		n++
		return []game.Option{game.WithShoe(shoes[n-1])}
	}))

	fs := &fakeSender{}
	return NewHandler(fs, cfg, tbl), fs
}

func callback(chatID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cb",
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func TestPlayHitStand(t *testing.T) {
	ctx := context.Background()
	h, fs := newHandler(t, stack(game.Two, game.Ten, game.Three, game.Seven, game.Ten))

	h.HandleMessage(ctx, &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: 7}, Text: "/play 200"})
	text := fs.last(t)
	if !strings.Contains(text, "Ставка: 200 | Баланс: 800") || !strings.Contains(text, "?") {
		t.Fatalf("play reply = %q", text)
	}

	h.HandleCallback(ctx, callback(7, CallbackHit))
	if text = fs.last(t); !strings.Contains(text, "(15)") {
		t.Fatalf("hit reply = %q", text)
	}

	h.HandleCallback(ctx, callback(7, CallbackStand))
	text = fs.last(t)
	if !strings.Contains(text, "Дилер выиграл") || !strings.Contains(text, "Баланс: 800") {
		t.Fatalf("stand reply = %q", text)
	}

	h.HandleCallback(ctx, callback(7, CallbackStand))
	if got := fs.answers[len(fs.answers)-1].Text; got != "Игра не активна" {
		t.Errorf("stand after end answered %q", got)
	}
}

func TestBlackjackMessage(t *testing.T) {
	ctx := context.Background()
	h, fs := newHandler(t, stack(game.Ace, game.Nine, game.King, game.Eight))

	h.HandlePlay(ctx, 9, []string{"100"})
	text := fs.last(t)
	if !strings.Contains(text, "BLACKJACK") || !strings.Contains(text, "+150") || !strings.Contains(text, "Баланс: 1150") {
		t.Errorf("blackjack reply = %q", text)
	}
}

func TestPlayRejectsBadBet(t *testing.T) {
	ctx := context.Background()
	h, fs := newHandler(t)

	h.HandlePlay(ctx, 3, []string{"abc"})
	if text := fs.last(t); !strings.Contains(text, "Неверная ставка") {
		t.Errorf("reply = %q", text)
	}

	h.HandlePlay(ctx, 3, []string{"5000"})
	if text := fs.last(t); !strings.Contains(text, "Ставка от 10 до 1000") {
		t.Errorf("reply = %q", text)
	}
}

func TestCallbackWithoutRound(t *testing.T) {
	h, fs := newHandler(t)

	h.HandleCallback(context.Background(), callback(5, CallbackHit))
	if len(fs.answers) != 1 || fs.answers[0].Text != "Игра не активна" {
		t.Errorf("answers = %+v", fs.answers)
	}
}

func TestBalanceAndTop(t *testing.T) {
	ctx := context.Background()
	h, fs := newHandler(t, stack(game.Ten, game.Ten, game.Nine, game.Seven))

	h.HandleTop(ctx, 1)
	if text := fs.last(t); !strings.Contains(text, "Пока никто не играл") {
		t.Errorf("empty top = %q", text)
	}

	h.HandlePlay(ctx, 1, nil)
	h.HandleCallback(ctx, callback(1, CallbackStand))

	h.HandleBalance(ctx, 1)
	if text := fs.last(t); !strings.Contains(text, "Баланс: 1100") || !strings.Contains(text, "Побед: 1") {
		t.Errorf("balance = %q", text)
	}

	h.HandleTop(ctx, 1)
	if text := fs.last(t); !strings.Contains(text, "🥇 1100") {
		t.Errorf("top = %q", text)
	}
}
