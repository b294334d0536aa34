package analytics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocketbook/internal/analytics"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
)

type Handler struct {
	svc *analytics.Service
}

func NewHandler(svc *analytics.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/overview", h.overview)
	r.Get("/category", h.category)
	r.Get("/trends", h.trends)
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	o, err := h.svc.Overview(r.Context(), userID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toOverviewResponse(o))
}

func (h *Handler) category(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	totals, err := h.svc.CategoryBreakdown(r.Context(), userID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCategoryResponse(totals))
}

func (h *Handler) trends(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	months, err := h.svc.MonthlyTrend(r.Context(), userID)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, trendResponse(months))
}
