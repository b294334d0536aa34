package importcsv

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
	txhttp "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer/csvfile"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

// DefaultMaxUploadBytes bounds the multipart body when no limit is configured.
const DefaultMaxUploadBytes = 5 << 20

type Handler struct {
	importSvc *importer.Service
	txSvc     *transaction.Service
	matchSvc  *matching.Service
	maxBytes  int64
}

// NewHandler wires the upload routes. matchSvc may be nil, in which case
// uncategorized rows are imported as-is.
func NewHandler(importSvc *importer.Service, txSvc *transaction.Service, matchSvc *matching.Service, maxBytes int64) *Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}

	return &Handler{
		importSvc: importSvc,
		txSvc:     txSvc,
		matchSvc:  matchSvc,
		maxBytes:  maxBytes,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Use(middleware.RequireRoles(auth.RoleAdmin, auth.RoleUser))
	r.Post("/", h.importFile)
	r.Post("/preview", h.preview)
}

type importSuccessResponse struct {
	Imported     int               `json:"imported"`
	Transactions []txhttp.Response `json:"transactions"`
}

type rowResponse struct {
	Amount      json.Number      `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	Category    string           `json:"category"`
	Date        time.Time        `json:"date"`
}

type previewResponse struct {
	Rows []rowResponse `json:"rows"`
}

// importFile parses the uploaded file and writes every row in one batch.
func (h *Handler) importFile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	params, ok := h.parseUpload(w, r, userID)
	if !ok {
		return
	}

	if len(params) == 0 {
		respond.Error(w, http.StatusBadRequest, "file contains no transactions")
		return
	}

	txs, err := h.txSvc.CreateBatch(r.Context(), userID, params)
	if err != nil {
		respond.Err(w, r, err)
		return
	}

	respond.JSON(w, http.StatusCreated, importSuccessResponse{
		Imported:     len(txs),
		Transactions: txhttp.ToResponseList(txs),
	})
}

// preview parses the uploaded file and echoes the rows without writing them.
func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(w, r)
	if !ok {
		return
	}

	params, ok := h.parseUpload(w, r, userID)
	if !ok {
		return
	}

	rows := make([]rowResponse, len(params))
	for i, p := range params {
		rows[i] = toRowResponse(p)
	}

	respond.JSON(w, http.StatusOK, previewResponse{Rows: rows})
}

func (h *Handler) parseUpload(w http.ResponseWriter, r *http.Request, userID uuid.UUID) ([]transaction.CreateParams, bool) {
	if r.ContentLength > h.maxBytes {
		respond.Error(w, http.StatusRequestEntityTooLarge, "file too large")
		return nil, false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(w, http.StatusRequestEntityTooLarge, "file too large")
			return nil, false
		}

		respond.Error(w, http.StatusBadRequest, "failed to parse form")

		return nil, false
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Invalid(w, "file", "is required")
		return nil, false
	}
	defer file.Close()

	params, err := h.importSvc.Import(importer.Format(r.FormValue("format")), file)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return nil, false
	}

	if h.matchSvc != nil {
		h.matchSvc.Categorize(r.Context(), userID, params, csvfile.DefaultCategory)
	}

	return params, true
}

func toRowResponse(p transaction.CreateParams) rowResponse {
	return rowResponse{
		Amount:      respond.Money(p.Amount),
		Type:        p.Type,
		Description: p.Description,
		Category:    p.Category,
		Date:        p.Date,
	}
}
