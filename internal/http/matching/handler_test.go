package matching_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	matchhttp "github.com/MrJamesThe3rd/pocketbook/internal/http/matching"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
)

func newRouter(t *testing.T, role auth.Role) (*matching.MockRepository, auth.Principal, http.Handler) {
	t.Helper()

	repo := matching.NewMockRepository(gomock.NewController(t))
	p := auth.Principal{UserID: uuid.New(), Role: role}

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	})
	r.Route("/rules", matchhttp.NewHandler(matching.NewService(repo)).Routes)

	return repo, p, r
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return rec
}

func TestHandler_Learn(t *testing.T) {
	repo, p, h := newRouter(t, auth.RoleUser)

	repo.EXPECT().
		CreateRule(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *matching.Rule) error {
			assert.Equal(t, p.UserID, r.UserID)
			r.ID = uuid.MustParse("9f0c8f0e-2222-4a52-8d9e-000000000001")
			r.CreatedAt = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
			return nil
		})

	rec := serve(h, http.MethodPost, "/rules", `{"pattern":"UBER","category":"Transport"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{
		"id":"9f0c8f0e-2222-4a52-8d9e-000000000001",
		"pattern":"UBER",
		"category":"Transport",
		"created_at":"2024-01-01T00:00:00Z"
	}`, rec.Body.String())
}

func TestHandler_Learn_Rejects(t *testing.T) {
	_, _, h := newRouter(t, auth.RoleReadonly)
	assert.Equal(t, http.StatusForbidden, serve(h, http.MethodPost, "/rules", `{"pattern":"UBER","category":"Transport"}`).Code)

	_, _, h = newRouter(t, auth.RoleUser)
	rec := serve(h, http.MethodPost, "/rules", `{"pattern":"","category":"Transport"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"pattern"`)
}

func TestHandler_Suggest(t *testing.T) {
	repo, p, h := newRouter(t, auth.RoleReadonly)

	repo.EXPECT().FindMatch(gomock.Any(), p.UserID, "UBER *TRIP").Return("Transport", nil)

	rec := serve(h, http.MethodGet, "/rules/suggest?description=UBER+*TRIP", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"description":"UBER *TRIP","category":"Transport"}`, rec.Body.String())

	rec = serve(h, http.MethodGet, "/rules/suggest", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandler_List(t *testing.T) {
	repo, p, h := newRouter(t, auth.RoleReadonly)

	repo.EXPECT().ListRules(gomock.Any(), p.UserID).Return(nil, nil)

	rec := serve(h, http.MethodGet, "/rules", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}
