package export

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
	txhttp "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
)

type Handler struct {
	svc *export.Service
	now func() time.Time
}

func NewHandler(svc *export.Service) *Handler {
	return &Handler{svc: svc, now: time.Now}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.download)
}

// download accepts the same filters as the transaction list and returns
// the matching rows as a CSV attachment.
func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	filter, ok := txhttp.ParseFilter(w, r.URL.Query())
	if !ok {
		return
	}

	// Buffered so a ledger failure can still produce a JSON error.
	var buf bytes.Buffer

	n, err := h.svc.WriteCSV(r.Context(), userID, filter, &buf)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions-%s.csv", h.now().UTC().Format("20060102"))

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("X-Export-Count", strconv.Itoa(n))
	w.WriteHeader(http.StatusOK)

	_, _ = buf.WriteTo(w)
}
