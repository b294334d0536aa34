package transaction

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pocketbook/internal/http/respond"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type Response struct {
	ID          uuid.UUID        `json:"id"`
	Amount      json.Number      `json:"amount"`
	Type        transaction.Type `json:"type"`
	Description string           `json:"description"`
	CategoryID  uuid.UUID        `json:"category_id"`
	Category    string           `json:"category"`
	Date        time.Time        `json:"date"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   *time.Time       `json:"updated_at,omitempty"`
}

type pageResponse struct {
	Total        int        `json:"total"`
	TotalPages   int        `json:"total_pages"`
	CurrentPage  int        `json:"current_page"`
	Transactions []Response `json:"transactions"`
}

type categoryResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

func ToResponse(tx *transaction.Transaction) Response {
	return Response{
		ID:          tx.ID,
		Amount:      respond.Money(tx.Amount),
		Type:        tx.Type,
		Description: tx.Description,
		CategoryID:  tx.CategoryID,
		Category:    tx.CategoryName(),
		Date:        tx.Date,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func ToResponseList(txs []*transaction.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}

func toPageResponse(p *transaction.Page) pageResponse {
	return pageResponse{
		Total:        p.Total,
		TotalPages:   p.TotalPages,
		CurrentPage:  p.CurrentPage,
		Transactions: ToResponseList(p.Transactions),
	}
}

func toCategoryList(cats []*transaction.Category) []categoryResponse {
	resp := make([]categoryResponse, len(cats))
	for i, c := range cats {
		resp[i] = categoryResponse{ID: c.ID, Name: c.Name}
	}

	return resp
}
