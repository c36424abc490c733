package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	log "github.com/sirupsen/logrus"

	"blackjackd/internal/game"
	"blackjackd/internal/ledger"
	"blackjackd/internal/table"
)

const defaultPlayer = "guest"

type Handler struct {
	table *table.Table
	log   *log.Entry
}

func NewHandler(t *table.Table) *Handler {
	return &Handler{
		table: t,
		log:   log.WithField("component", "api"),
	}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

type newRoundRequest struct {
	PlayerID string `json:"player_id"`
	Amount   int64  `json:"amount"`
}

type actionRequest struct {
	Action string `json:"action"`
}

type balanceRequest struct {
	Balance *int64 `json:"balance"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		h.log.WithError(err).Warn("failed to write response")
	}
}

func (h *Handler) ok(w http.ResponseWriter, msg string, data interface{}) {
	h.CreateResponse(w, Response{Message: msg, Code: http.StatusOK, Data: data})
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, game.ErrInvalidBet),
		errors.Is(err, table.ErrPlayerRequired),
		errors.Is(err, ledger.ErrNegativeAmount):
		code = http.StatusBadRequest
	case errors.Is(err, game.ErrSessionNotFound):
		code = http.StatusNotFound
	case errors.Is(err, game.ErrInvalidAction):
		code = http.StatusConflict
	}

	msg := err.Error()
	if code == http.StatusInternalServerError {
		h.log.WithError(err).Error("request failed")
		msg = "internal error"
	}
	h.CreateResponse(w, Response{Message: http.StatusText(code), Code: code, Error: msg})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	h.CreateResponse(w, Response{Message: http.StatusText(http.StatusBadRequest), Code: http.StatusBadRequest, Error: msg})
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	h.ok(w, "Blackjack API Ready", nil)
}

func (h *Handler) NewRoundHandler(w http.ResponseWriter, r *http.Request) {
	var req newRoundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.PlayerID == "" {
		req.PlayerID = r.Header.Get("X-Player-ID")
	}
	if req.PlayerID == "" {
		req.PlayerID = defaultPlayer
	}

	snap, err := h.table.Start(r.Context(), req.PlayerID, req.Amount)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "round started", snap)
}

func (h *Handler) ActionHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	var (
		snap game.Snapshot
		err  error
	)
	switch req.Action {
	case "hit":
		snap, err = h.table.Hit(r.Context(), id)
	case "stand":
		snap, err = h.table.Stand(r.Context(), id)
	default:
		h.badRequest(w, "unknown action "+strconv.Quote(req.Action))
		return
	}
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, req.Action, snap)
}

func (h *Handler) GetRoundHandler(w http.ResponseWriter, r *http.Request) {
	snap, err := h.table.Snapshot(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "round", snap)
}

func (h *Handler) GetPlayerHandler(w http.ResponseWriter, r *http.Request) {
	p, err := h.table.Player(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "player", p)
}

func (h *Handler) SetBalanceHandler(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Balance == nil {
		h.badRequest(w, "balance is required")
		return
	}

	p, err := h.table.SetBalance(r.Context(), chi.URLParam(r, "id"), *req.Balance)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "balance updated", p)
}

func (h *Handler) TopHandler(w http.ResponseWriter, r *http.Request) {
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			h.badRequest(w, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	stats, err := h.table.Top(r.Context(), limit)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.ok(w, "top", stats)
}
