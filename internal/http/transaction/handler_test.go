package transaction_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	txhttp "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type fixture struct {
	repo   *transaction.MockRepository
	ltx    *transaction.MockLedgerTx
	inv    *transaction.MockInvalidator
	router http.Handler
	user   auth.Principal
}

func newFixture(t *testing.T, role auth.Role) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		repo: transaction.NewMockRepository(ctrl),
		ltx:  transaction.NewMockLedgerTx(ctrl),
		inv:  transaction.NewMockInvalidator(ctrl),
		user: auth.Principal{UserID: uuid.New(), Role: role},
	}

	h := txhttp.NewHandler(transaction.NewService(f.repo, f.inv))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), f.user)))
		})
	})
	r.Route("/transactions", h.Routes)
	r.Route("/categories", h.CategoryRoutes)
	f.router = r

	return f
}

func (f *fixture) do(method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

var rent = &transaction.Category{ID: uuid.MustParse("0b7e1f7c-3a35-4d2b-9db1-2f7a6c1d9e01"), Name: "Rent"}

func (f *fixture) expectCreate() {
	f.repo.EXPECT().Begin(gomock.Any()).Return(f.ltx, nil)
	f.ltx.EXPECT().FindOrCreateCategory(gomock.Any(), "Rent").Return(rent, nil)
	f.ltx.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			tx.ID = uuid.MustParse("5d1c0f4e-1111-4a52-8d9e-000000000001")
			tx.CreatedAt = time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC)
			return nil
		})
	f.ltx.EXPECT().Commit().Return(nil)
	f.ltx.EXPECT().Rollback().Return(nil)
	f.inv.EXPECT().InvalidateAll(gomock.Any(), f.user.UserID)
}

func TestHandler_Create(t *testing.T) {
	f := newFixture(t, auth.RoleUser)
	f.expectCreate()

	rec := f.do(http.MethodPost, "/transactions", `{"amount":250.5,"type":"expense","description":"January","category":"Rent","date":"2024-01-03"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"id":"5d1c0f4e-1111-4a52-8d9e-000000000001",
		"amount":250.50,
		"type":"expense",
		"description":"January",
		"category_id":"0b7e1f7c-3a35-4d2b-9db1-2f7a6c1d9e01",
		"category":"Rent",
		"date":"2024-01-03T00:00:00Z",
		"created_at":"2024-01-03T09:00:00Z"
	}`, rec.Body.String())
}

func TestHandler_Create_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		role       auth.Role
		body       string
		wantStatus int
		wantField  string
	}{
		{
			name:       "Readonly",
			role:       auth.RoleReadonly,
			body:       `{"amount":1,"type":"expense","category":"Rent"}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "MalformedBody",
			role:       auth.RoleUser,
			body:       `{"amount":`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "MissingAmount",
			role:       auth.RoleUser,
			body:       `{"type":"expense","category":"Rent"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "amount",
		},
		{
			name:       "NegativeAmount",
			role:       auth.RoleUser,
			body:       `{"amount":-5,"type":"expense","category":"Rent"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "amount",
		},
		{
			name:       "BadType",
			role:       auth.RoleAdmin,
			body:       `{"amount":5,"type":"gift","category":"Rent"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "type",
		},
		{
			name:       "BadDate",
			role:       auth.RoleUser,
			body:       `{"amount":5,"type":"expense","category":"Rent","date":"03/01/2024"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.role)

			rec := f.do(http.MethodPost, "/transactions", tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantField != "" {
				assert.Contains(t, rec.Body.String(), `"field":"`+tt.wantField+`"`)
			}
		})
	}
}

func TestHandler_Update_ZeroAmountIsApplied(t *testing.T) {
	f := newFixture(t, auth.RoleUser)
	id := uuid.New()

	stored := &transaction.Transaction{
		ID:          id,
		UserID:      f.user.UserID,
		Type:        transaction.TypeExpense,
		Amount:      decimal.RequireFromString("250.50"),
		Description: "January",
		CategoryID:  rent.ID,
		Category:    rent,
		Date:        time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC),
	}

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.ltx, nil)
	f.ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), f.user.UserID, id).Return(stored, nil)
	f.ltx.EXPECT().
		UpdateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			assert.True(t, tx.Amount.IsZero())
			assert.Empty(t, tx.Description)
			return nil
		})
	f.ltx.EXPECT().Commit().Return(nil)
	f.ltx.EXPECT().Rollback().Return(nil)
	f.inv.EXPECT().InvalidateAll(gomock.Any(), f.user.UserID)

	rec := f.do(http.MethodPatch, "/transactions/"+id.String(), `{"amount":0,"description":""}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"amount":0.00`)
	assert.Contains(t, rec.Body.String(), `"category":"Rent"`)
}

func TestHandler_Update_NotFound(t *testing.T) {
	f := newFixture(t, auth.RoleUser)
	id := uuid.New()

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.ltx, nil)
	f.ltx.EXPECT().GetTransactionForUpdate(gomock.Any(), f.user.UserID, id).Return(nil, transaction.ErrNotFound)
	f.ltx.EXPECT().Rollback().Return(nil)

	rec := f.do(http.MethodPut, "/transactions/"+id.String(), `{"description":"x"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"message":"Transaction not found"}`, rec.Body.String())
}

func TestHandler_Delete(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := newFixture(t, auth.RoleUser)
		id := uuid.New()

		f.repo.EXPECT().DeleteTransaction(gomock.Any(), f.user.UserID, id).Return(nil)
		f.inv.EXPECT().InvalidateAll(gomock.Any(), f.user.UserID)

		rec := f.do(http.MethodDelete, "/transactions/"+id.String(), "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"message":"Transaction deleted successfully"}`, rec.Body.String())
	})

	t.Run("OtherUsers", func(t *testing.T) {
		f := newFixture(t, auth.RoleUser)
		id := uuid.New()

		f.repo.EXPECT().DeleteTransaction(gomock.Any(), f.user.UserID, id).Return(transaction.ErrNotFound)

		rec := f.do(http.MethodDelete, "/transactions/"+id.String(), "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BadID", func(t *testing.T) {
		f := newFixture(t, auth.RoleUser)

		rec := f.do(http.MethodDelete, "/transactions/not-a-uuid", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestHandler_List(t *testing.T) {
	f := newFixture(t, auth.RoleReadonly)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 23, 59, 59, 999999999, time.UTC)
	want := transaction.ListFilter{
		Type:      new(transaction.TypeExpense),
		Category:  new("Rent"),
		StartDate: &start,
		EndDate:   &end,
		Search:    new("jan"),
		Limit:     5,
		Offset:    5,
	}

	f.repo.EXPECT().CountTransactions(gomock.Any(), f.user.UserID, want).Return(7, nil)
	f.repo.EXPECT().ListTransactions(gomock.Any(), f.user.UserID, want).Return([]*transaction.Transaction{
		{ID: uuid.New(), Type: transaction.TypeExpense, Amount: decimal.RequireFromString("10"), Category: rent, CategoryID: rent.ID},
		{ID: uuid.New(), Type: transaction.TypeExpense, Amount: decimal.RequireFromString("20"), Category: rent, CategoryID: rent.ID},
	}, nil)

	rec := f.do(http.MethodGet, "/transactions?type=expense&category=Rent&start_date=2024-01-01&end_date=2024-01-31&search=jan&page=2&limit=5", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	assert.Contains(t, body, `"total":7`)
	assert.Contains(t, body, `"total_pages":2`)
	assert.Contains(t, body, `"current_page":2`)
	assert.Contains(t, body, `"amount":20.00`)
}

func TestHandler_List_InvalidQuery(t *testing.T) {
	tests := map[string]string{
		"type":       "/transactions?type=transfer",
		"start_date": "/transactions?start_date=yesterday",
		"end_date":   "/transactions?end_date=2024-13-01",
		"page":       "/transactions?page=0",
		"limit":      "/transactions?limit=ten",
	}

	for field, target := range tests {
		t.Run(field, func(t *testing.T) {
			f := newFixture(t, auth.RoleUser)

			rec := f.do(http.MethodGet, target, "")
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), `"field":"`+field+`"`)
		})
	}
}

func TestHandler_Get(t *testing.T) {
	f := newFixture(t, auth.RoleReadonly)
	id := uuid.New()

	f.repo.EXPECT().GetTransaction(gomock.Any(), f.user.UserID, id).Return(nil, transaction.ErrNotFound)

	rec := f.do(http.MethodGet, "/transactions/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandler_Categories(t *testing.T) {
	f := newFixture(t, auth.RoleReadonly)

	f.repo.EXPECT().ListCategories(gomock.Any()).Return([]*transaction.Category{rent}, nil)

	rec := f.do(http.MethodGet, "/categories", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":"0b7e1f7c-3a35-4d2b-9db1-2f7a6c1d9e01","name":"Rent"}]`, rec.Body.String())
}
