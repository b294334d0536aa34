package importcsv_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/importcsv"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

type fixture struct {
	repo   *transaction.MockRepository
	ltx    *transaction.MockLedgerTx
	inv    *transaction.MockInvalidator
	rules  *matching.MockRepository
	router http.Handler
	user   auth.Principal
}

func newFixture(t *testing.T, role auth.Role, maxBytes int64) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	f := &fixture{
		repo:  transaction.NewMockRepository(ctrl),
		ltx:   transaction.NewMockLedgerTx(ctrl),
		inv:   transaction.NewMockInvalidator(ctrl),
		rules: matching.NewMockRepository(ctrl),
		user:  auth.Principal{UserID: uuid.New(), Role: role},
	}

	h := importcsv.NewHandler(
		importer.NewService(),
		transaction.NewService(f.repo, f.inv),
		matching.NewService(f.rules),
		maxBytes,
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), f.user)))
		})
	})
	r.Route("/import", h.Routes)
	f.router = r

	return f
}

func upload(t *testing.T, target, field, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "ledger.csv")
		require.NoError(t, err)

		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}

	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	return rec
}

const ledgerCSV = `date;type;amount;category;description
2024-01-05;income;1.000,00;Salary;January pay
2024-01-07;;-250,50;Rent;Flat
2024-01-09;expense;12,00;Rent;Water
`

func TestHandler_Import(t *testing.T) {
	f := newFixture(t, auth.RoleUser, 0)

	rent := &transaction.Category{ID: uuid.New(), Name: "Rent"}
	salary := &transaction.Category{ID: uuid.New(), Name: "Salary"}

	f.repo.EXPECT().Begin(gomock.Any()).Return(f.ltx, nil)
	f.ltx.EXPECT().FindOrCreateCategory(gomock.Any(), "Salary").Return(salary, nil)
	f.ltx.EXPECT().FindOrCreateCategory(gomock.Any(), "Rent").Return(rent, nil)
	f.ltx.EXPECT().
		CreateTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, tx *transaction.Transaction) error {
			tx.ID = uuid.New()
			return nil
		}).
		Times(3)
	f.ltx.EXPECT().Commit().Return(nil)
	f.ltx.EXPECT().Rollback().Return(nil)
	f.inv.EXPECT().InvalidateAll(gomock.Any(), f.user.UserID)

	rec := f.serve(upload(t, "/import", "file", ledgerCSV))

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"imported":3`)
	assert.Contains(t, rec.Body.String(), `"amount":1000.00`)
	assert.Contains(t, rec.Body.String(), `"amount":250.50`)
	assert.Contains(t, rec.Body.String(), `"type":"expense"`)
}

func TestHandler_Preview(t *testing.T) {
	f := newFixture(t, auth.RoleAdmin, 0)

	rec := f.serve(upload(t, "/import/preview", "file", ledgerCSV))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"rows":[
		{"amount":1000.00,"type":"income","description":"January pay","category":"Salary","date":"2024-01-05T00:00:00Z"},
		{"amount":250.50,"type":"expense","description":"Flat","category":"Rent","date":"2024-01-07T00:00:00Z"},
		{"amount":12.00,"type":"expense","description":"Water","category":"Rent","date":"2024-01-09T00:00:00Z"}
	]}`, rec.Body.String())
}

func TestHandler_Import_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		role       auth.Role
		field      string
		content    string
		maxBytes   int64
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Readonly",
			role:       auth.RoleReadonly,
			field:      "file",
			content:    ledgerCSV,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "MissingFile",
			role:       auth.RoleUser,
			wantStatus: http.StatusBadRequest,
			wantBody:   `"field":"file"`,
		},
		{
			name:       "ParseError",
			role:       auth.RoleUser,
			field:      "file",
			content:    "date,amount\n2024-01-01,abc\n",
			wantStatus: http.StatusBadRequest,
			wantBody:   "line 2",
		},
		{
			name:       "NoRows",
			role:       auth.RoleUser,
			field:      "file",
			content:    "date,amount\n",
			wantStatus: http.StatusBadRequest,
			wantBody:   "no transactions",
		},
		{
			name:       "TooLarge",
			role:       auth.RoleUser,
			field:      "file",
			content:    ledgerCSV,
			maxBytes:   64,
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.role, tt.maxBytes)

			rec := f.serve(upload(t, "/import", tt.field, tt.content))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHandler_Preview_AppliesCategoryRules(t *testing.T) {
	f := newFixture(t, auth.RoleUser, 0)

	f.rules.EXPECT().FindMatch(gomock.Any(), f.user.UserID, "UBER *TRIP").Return("Transport", nil)
	f.rules.EXPECT().FindMatch(gomock.Any(), f.user.UserID, "corner shop").Return("", nil)

	csv := "date,amount,category,description\n" +
		"2024-01-02,-12.40,,UBER *TRIP\n" +
		"2024-01-03,-3.10,,corner shop\n" +
		"2024-01-04,-50.00,Food,UBER EATS\n"

	rec := f.serve(upload(t, "/import/preview", "file", csv))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"category":"Transport"`)
	assert.Contains(t, rec.Body.String(), `"category":"Uncategorized"`)
	assert.Contains(t, rec.Body.String(), `"category":"Food"`)
}
