package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"blackjackd/internal/config"
	"blackjackd/internal/game"
	"blackjackd/internal/table"
)

// sender is the part of *tgbotapi.BotAPI the handler uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Handler struct {
	bot   sender
	cfg   *config.Config
	table *table.Table
	log   *log.Entry

	mu       sync.Mutex
	sessions map[int64]string
}

func NewHandler(bot sender, cfg *config.Config, t *table.Table) *Handler {
	return &Handler{
		bot:      bot,
		cfg:      cfg,
		table:    t,
		log:      log.WithField("component", "bot"),
		sessions: make(map[int64]string),
	}
}

func playerID(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// ============== ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ ==============

func (h *Handler) send(chatID int64, text string) {
	if _, err := h.bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		h.log.WithError(err).Warn("Failed to send message")
	}
}

func (h *Handler) sendWithKeyboard(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := h.bot.Send(msg); err != nil {
		h.log.WithError(err).Warn("Failed to send message")
	}
}

func (h *Handler) answerCallback(id, text string) {
	if _, err := h.bot.Request(tgbotapi.NewCallback(id, text)); err != nil {
		h.log.WithError(err).Debug("Failed to answer callback")
	}
}

func (h *Handler) session(chatID int64) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id, ok := h.sessions[chatID]
	return id, ok
}

func (h *Handler) setSession(chatID int64, id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[chatID] = id
}

// ============== ФОРМАТИРОВАНИЕ ==============

func formatCards(views []game.CardView) string {
	parts := make([]string, 0, len(views))
	for _, v := range views {
		parts = append(parts, v.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatGameStatus(s game.Snapshot) string {
	return fmt.Sprintf("🎴 Вы: %s (%d)\n🃏 Дилер: %s (%d)",
		formatCards(s.PlayerCards), s.PlayerScore, formatCards(s.DealerCards), s.DealerScore)
}

func resultText(s game.Snapshot) string {
	switch s.Status {
	case game.StatusPlayerWin:
		if len(s.PlayerCards) == 2 && s.PlayerScore == 21 {
			return "🎰 BLACKJACK! 🎰"
		}
		return "🎉 Вы выиграли!"
	case game.StatusDealerBust:
		return "💥 Дилер перебрал! Вы выиграли!"
	case game.StatusDealerWin:
		return "😔 Дилер выиграл!"
	case game.StatusPlayerBust:
		return "💥 Перебор!"
	case game.StatusPush:
		return "🤝 Ничья!"
	}
	return ""
}

func formatGameEnd(s game.Snapshot) string {
	msg := fmt.Sprintf("%s\n\n%s", formatGameStatus(s), resultText(s))

	if win := s.Payout - s.BetAmount; win > 0 {
		msg += fmt.Sprintf("\n💰 Выигрыш: +%d", win)
	}
	msg += fmt.Sprintf("\n💵 Баланс: %d", s.Balance)

	return msg
}

func (h *Handler) reply(chatID int64, s game.Snapshot) {
	if s.Status.IsTerminal() {
		h.sendWithKeyboard(chatID, formatGameEnd(s), EndGameKeyboard(s.BetAmount))
		return
	}
	h.sendWithKeyboard(chatID,
		fmt.Sprintf("💰 Ставка: %d | Баланс: %d\n\n%s", s.BetAmount, s.Balance, formatGameStatus(s)),
		GameKeyboard())
}

// ============== ОБРАБОТЧИКИ КОМАНД ==============

func (h *Handler) HandleStart(ctx context.Context, chatID int64) {
	p, err := h.table.Player(ctx, playerID(chatID))
	if err != nil {
		h.log.WithError(err).Error("failed to load player")
		h.send(chatID, "❌ Ошибка. Попробуйте позже.")
		return
	}

	h.send(chatID, fmt.Sprintf(
		"🎰 Добро пожаловать в Blackjack!\n\n"+
			"💵 Баланс: %d\n\n"+
			"/play <ставка> — играть\n"+
			"/balance — статистика\n"+
			"/top — топ игроков\n"+
			"/help — правила",
		p.Balance))
}

func (h *Handler) HandleHelp(chatID int64) {
	dealer := "Дилер стоит на 17"
	if h.cfg.HitSoft17 {
		dealer = "Дилер берёт на мягких 17"
	}

	h.send(chatID, fmt.Sprintf(
		"📖 Правила Blackjack:\n\n"+
			"🎯 Цель: набрать 21 очко или больше дилера, не перебрав\n\n"+
			"📊 Очки:\n"+
			"• 2-10 — номинал\n"+
			"• J, Q, K — 10\n"+
			"• A — 11 или 1\n\n"+
			"🎮 Действия:\n"+
			"• Hit — взять карту\n"+
			"• Stand — остановиться\n\n"+
			"🃏 %s\n"+
			"🎰 Blackjack платит x%.1f",
		dealer, 1+h.cfg.BlackjackPays))
}

func (h *Handler) HandleBalance(ctx context.Context, chatID int64) {
	p, err := h.table.Player(ctx, playerID(chatID))
	if err != nil {
		h.log.WithError(err).Error("failed to load player")
		h.send(chatID, "❌ Ошибка")
		return
	}

	h.send(chatID, fmt.Sprintf(
		"💰 Баланс: %d\n\n"+
			"📊 Статистика:\n"+
			"🎮 Игр: %d\n"+
			"✅ Побед: %d (%.1f%%)\n"+
			"❌ Поражений: %d\n"+
			"🤝 Ничьих: %d\n"+
			"🎰 Блэкджеков: %d",
		p.Balance, p.Rounds, p.Wins, p.WinRate(), p.Losses, p.Pushes, p.Naturals))
}

func (h *Handler) HandleTop(ctx context.Context, chatID int64) {
	stats, err := h.table.Top(ctx, 10)
	if err != nil {
		h.log.WithError(err).Error("failed to load top")
		h.send(chatID, "❌ Ошибка")
		return
	}

	if len(stats) == 0 {
		h.send(chatID, "🏆 Пока никто не играл!")
		return
	}

	var sb strings.Builder
	sb.WriteString("🏆 Топ игроков:\n\n")

	medals := []string{"🥇", "🥈", "🥉"}
	for i, s := range stats {
		medal := fmt.Sprintf("%d.", i+1)
		if i < 3 {
			medal = medals[i]
		}
		sb.WriteString(fmt.Sprintf("%s %d 💰 | %d игр (%.0f%%)\n",
			medal, s.Balance, s.Rounds, s.WinRate))
	}

	h.send(chatID, sb.String())
}

func (h *Handler) HandlePlay(ctx context.Context, chatID int64, args []string) {
	var bet int64
	if len(args) > 0 {
		b, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || b <= 0 {
			h.send(chatID, fmt.Sprintf("❌ Неверная ставка. Пример: /play %d", h.cfg.DefaultBet))
			return
		}
		bet = b
	}

	s, err := h.table.Start(ctx, playerID(chatID), bet)
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}

	h.setSession(chatID, s.ID)
	h.reply(chatID, s)
}

func (h *Handler) sendError(ctx context.Context, chatID int64, err error) {
	switch {
	case errors.Is(err, game.ErrInvalidBet):
		p, perr := h.table.Player(ctx, playerID(chatID))
		if perr == nil && p.Balance < h.cfg.MinBet {
			h.send(chatID, fmt.Sprintf("❌ Недостаточно средств! Баланс: %d", p.Balance))
			return
		}
		h.send(chatID, fmt.Sprintf("❌ Ставка от %d до %d, не больше баланса", h.cfg.MinBet, h.cfg.MaxBet))
	case errors.Is(err, game.ErrInvalidAction):
		h.send(chatID, "Игра не активна")
	default:
		h.log.WithError(err).WithField("chat_id", chatID).Error("round failed")
		h.send(chatID, "❌ Ошибка")
	}
}

// ============== ОБРАБОТЧИКИ CALLBACK ==============

func (h *Handler) HandleCallback(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	if callback.Message == nil {
		h.answerCallback(callback.ID, "")
		return
	}
	chatID := callback.Message.Chat.ID

	switch callback.Data {
	case CallbackPlayAgain:
		h.answerCallback(callback.ID, "")
		h.HandlePlay(ctx, chatID, nil)
		return

	case CallbackBalance:
		p, err := h.table.Player(ctx, playerID(chatID))
		if err != nil {
			h.answerCallback(callback.ID, "Ошибка")
			return
		}
		h.answerCallback(callback.ID, fmt.Sprintf("💵 %d", p.Balance))
		return
	}

	id, ok := h.session(chatID)
	if !ok {
		h.answerCallback(callback.ID, "Игра не активна")
		return
	}

	var (
		s   game.Snapshot
		err error
	)
	switch callback.Data {
	case CallbackHit:
		s, err = h.table.Hit(ctx, id)
	case CallbackStand:
		s, err = h.table.Stand(ctx, id)
	default:
		h.answerCallback(callback.ID, "")
		return
	}

	if errors.Is(err, game.ErrInvalidAction) {
		h.answerCallback(callback.ID, "Игра не активна")
		return
	}
	h.answerCallback(callback.ID, "")
	if err != nil {
		h.sendError(ctx, chatID, err)
		return
	}
	h.reply(chatID, s)
}

// ============== ОБРАБОТЧИК СООБЩЕНИЙ ==============

func (h *Handler) HandleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	parts := strings.Fields(msg.Text)

	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "/start":
		h.HandleStart(ctx, chatID)
	case "/help":
		h.HandleHelp(chatID)
	case "/play":
		h.HandlePlay(ctx, chatID, args)
	case "/balance":
		h.HandleBalance(ctx, chatID)
	case "/top":
		h.HandleTop(ctx, chatID)
	}
}
