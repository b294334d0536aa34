package matching

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
)

type Handler struct {
	svc *matching.Service
}

func NewHandler(svc *matching.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/suggest", h.suggest)

	r.With(middleware.RequireRoles(auth.RoleAdmin, auth.RoleUser)).Post("/", h.learn)
}

type ruleResponse struct {
	ID        uuid.UUID `json:"id"`
	Pattern   string    `json:"pattern"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"created_at"`
}

type suggestResponse struct {
	Description string `json:"description"`
	Category    string `json:"category"`
}

func toRuleResponse(r *matching.Rule) ruleResponse {
	return ruleResponse{
		ID:        r.ID,
		Pattern:   r.Pattern,
		Category:  r.Category,
		CreatedAt: r.CreatedAt,
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	rules, err := h.svc.Rules(r.Context(), userID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	resp := make([]ruleResponse, len(rules))
	for i, rule := range rules {
		resp[i] = toRuleResponse(rule)
	}

	respond.JSON(w, http.StatusOK, resp)
}

func (h *Handler) suggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	desc := r.URL.Query().Get("description")
	if desc == "" {
		respond.Invalid(w, "description", "is required")
		return
	}

	category, err := h.svc.Suggest(r.Context(), userID, desc)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, suggestResponse{Description: desc, Category: category})
}

type learnRequest struct {
	Pattern  string `json:"pattern"`
	Category string `json:"category"`
}

func (h *Handler) learn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	var req learnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := h.svc.Learn(r.Context(), userID, req.Pattern, req.Category)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toRuleResponse(rule))
}
