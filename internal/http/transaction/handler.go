package transaction

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type Handler struct {
	svc *transaction.Service
}

func NewHandler(svc *transaction.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireRoles(auth.RoleAdmin, auth.RoleUser))
		r.Post("/", h.create)
		r.Put("/{id}", h.update)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.categories)
}

type createTransactionRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        *Date            `json:"date"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Amount == nil {
		respond.Invalid(w, "amount", "is required")
		return
	}

	params := transaction.CreateParams{
		Amount:      *req.Amount,
		Type:        req.Type,
		Description: req.Description,
		Category:    req.Category,
	}
	if req.Date != nil {
		params.Date = time.Time(*req.Date)
	}

	tx, err := h.svc.Create(r.Context(), userID, params)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, ToResponse(tx))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()

	filter, ok := ParseFilter(w, q)
	if !ok {
		return
	}

	page, ok := intParam(w, q.Get("page"), "page")
	if !ok {
		return
	}

	limit, ok := intParam(w, q.Get("limit"), "limit")
	if !ok {
		return
	}

	result, err := h.svc.List(r.Context(), userID, filter, page, limit)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toPageResponse(result))
}

// ParseFilter reads the type, category, search and date range query values.
// A date-only end_date covers the whole day. It writes a 400 and returns
// false on invalid input.
func ParseFilter(w http.ResponseWriter, q url.Values) (transaction.ListFilter, bool) {
	filter := transaction.ListFilter{}

	if s := q.Get("type"); s != "" {
		t := transaction.Type(s)
		if !t.Valid() {
			respond.Invalid(w, "type", "must be one of: income expense")
			return filter, false
		}

		filter.Type = &t
	}

	if s := q.Get("category"); s != "" {
		filter.Category = new(s)
	}

	if s := q.Get("search"); s != "" {
		filter.Search = new(s)
	}

	if s := q.Get("start_date"); s != "" {
		t, _, err := ParseDate(s)
		if err != nil {
			respond.Invalid(w, "start_date", "must be YYYY-MM-DD or RFC 3339")
			return filter, false
		}

		filter.StartDate = &t
	}

	if s := q.Get("end_date"); s != "" {
		t, dateOnly, err := ParseDate(s)
		if err != nil {
			respond.Invalid(w, "end_date", "must be YYYY-MM-DD or RFC 3339")
			return filter, false
		}

		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}

		filter.EndDate = &t
	}

	return filter, true
}

// intParam parses an optional positive integer query value; 0 means absent.
func intParam(w http.ResponseWriter, s, name string) (int, bool) {
	if s == "" {
		return 0, true
	}

	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		respond.Invalid(w, name, "must be a positive integer")
		return 0, false
	}

	return n, true
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	tx, err := h.svc.Get(r.Context(), userID, id)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.Message(w, http.StatusOK, "Transaction deleted successfully")
}

// updateTransactionRequest distinguishes absent fields (nil) from zero values.
type updateTransactionRequest struct {
	Description *string           `json:"description"`
	Amount      *decimal.Decimal  `json:"amount"`
	Type        *transaction.Type `json:"type"`
	Category    *string           `json:"category"`
	Date        *Date             `json:"date"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := transaction.UpdateParams{
		Description: req.Description,
		Amount:      req.Amount,
		Type:        req.Type,
		Category:    req.Category,
	}
	if req.Date != nil {
		params.Date = new(time.Time(*req.Date))
	}

	tx, err := h.svc.Update(r.Context(), userID, id, params)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, ToResponse(tx))
}

func (h *Handler) categories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.svc.Categories(r.Context())
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, toCategoryList(cats))
}
