package http_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/pocketbook/internal/analytics"
	"github.com/MrJamesThe3rd/pocketbook/internal/auth"
	"github.com/MrJamesThe3rd/pocketbook/internal/cache"
	"github.com/MrJamesThe3rd/pocketbook/internal/export"
	apihttp "github.com/MrJamesThe3rd/pocketbook/internal/http"
	analyticshttp "github.com/MrJamesThe3rd/pocketbook/internal/http/analytics"
	exporthttp "github.com/MrJamesThe3rd/pocketbook/internal/http/export"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/importcsv"
	matchhttp "github.com/MrJamesThe3rd/pocketbook/internal/http/matching"
	"github.com/MrJamesThe3rd/pocketbook/internal/http/middleware"
	txhttp "github.com/MrJamesThe3rd/pocketbook/internal/http/transaction"
	"github.com/MrJamesThe3rd/pocketbook/internal/importer"
	"github.com/MrJamesThe3rd/pocketbook/internal/matching"
	"github.com/MrJamesThe3rd/pocketbook/internal/transaction"
)

const (
	secret = "router-test-secret"
	issuer = "pocketbook-test"
)

type fixture struct {
	repo  *transaction.MockRepository
	token string
	opts  apihttp.Options
	h     apihttp.Handlers
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := transaction.NewMockRepository(ctrl)
	summaries := cache.NewMemory()
	txSvc := transaction.NewService(repo, summaries)
	matchSvc := matching.NewService(matching.NewMockRepository(ctrl))

	token, err := auth.NewIssuer(secret, issuer, time.Hour).
		Issue(auth.Principal{UserID: uuid.New(), Role: auth.RoleUser})
	require.NoError(t, err)

	return &fixture{
		repo:  repo,
		token: token,
		opts: apihttp.Options{
			Verifier: auth.NewVerifier(secret, issuer),
			Database: func(context.Context) error { return nil },
			Cache:    summaries.Ping,
		},
		h: apihttp.Handlers{
			Transactions: txhttp.NewHandler(txSvc),
			Analytics:    analyticshttp.NewHandler(analytics.NewService(repo, summaries, 0)),
			Import:       importcsv.NewHandler(importer.NewService(), txSvc, matchSvc, 0),
			Rules:        matchhttp.NewHandler(matchSvc),
			Export:       exporthttp.NewHandler(export.NewService(repo)),
		},
	}
}

func (f *fixture) do(method, target, contentType, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}

	rec := httptest.NewRecorder()
	apihttp.New(f.h, f.opts).ServeHTTP(rec, req)

	return rec
}

func TestRouter_Health(t *testing.T) {
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		db, cache  apihttp.Check
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Healthy",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok","database":"ok","cache":"ok"}`,
		},
		{
			name:       "CacheDown",
			cache:      down,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"degraded","database":"ok","cache":"down"}`,
		},
		{
			name:       "DatabaseDown",
			db:         down,
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","database":"down","cache":"ok"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.db != nil {
				f.opts.Database = tt.db
			}

			if tt.cache != nil {
				f.opts.Cache = tt.cache
			}

			rec := f.do(http.MethodGet, "/health", "", "", false)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestRouter_RequiresAuthentication(t *testing.T) {
	f := newFixture(t)

	for _, target := range []string{"/api/v1/transactions", "/api/v1/analytics/overview", "/api/v1/categories", "/api/v1/export"} {
		rec := f.do(http.MethodGet, target, "", "", false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestRouter_TransactionsRequireJSON(t *testing.T) {
	f := newFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/transactions", "text/plain", "amount=1", true)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestRouter_AnalyticsOverview(t *testing.T) {
	f := newFixture(t)
	f.repo.EXPECT().ListTransactions(gomock.Any(), gomock.Any(), transaction.ListFilter{}).Return(nil, nil)

	rec := f.do(http.MethodGet, "/api/v1/analytics/overview", "", "", true)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"income":0.00,"expense":0.00,"balance":0.00}`, rec.Body.String())
}

func TestRouter_GlobalRateLimit(t *testing.T) {
	f := newFixture(t)
	f.opts.GlobalLimiter = middleware.NewLimiter("router-test", 1, time.Minute, false)

	first := f.do(http.MethodGet, "/health", "", "", false)
	second := f.do(http.MethodGet, "/health", "", "", false)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "0", second.Header().Get("X-RateLimit-Remaining"))
}
