package kakao

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

func testService(serverURL string) *Service {
	return New(config.Kakao{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      serverURL + "/oauth/authorize",
		TokenURL:     serverURL + "/oauth/token",
		APIURL:       serverURL + "/openapi/v4",
	})
}

func TestBuildAuthorizationURL(t *testing.T) {
	svc := testService("https://kauth.kakao.com")

	authURL, err := svc.BuildAuthorizationURL("https://api.example.com/callback", "state-123", []string{"moment"})
	assert.NoError(t, err)
	assert.Contains(t, authURL, "https://kauth.kakao.com/oauth/authorize?")
	assert.Contains(t, authURL, "client_id=client-id")
	assert.Contains(t, authURL, "response_type=code")
	assert.Contains(t, authURL, "state=state-123")
	assert.Contains(t, authURL, "scope=moment")
}

func TestExchangeCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/oauth/token", r.URL.Path)
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "authorization_code", r.PostForm.Get("grant_type"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
		assert.Equal(t, "auth-code", r.PostForm.Get("code"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","expires_in":21599,"scope":"moment"}`))
	}))
	defer server.Close()

	svc := testService(server.URL)

	tokens, err := svc.ExchangeCode(context.Background(), "auth-code", "https://api.example.com/callback")
	assert.NoError(t, err)
	assert.Equal(t, "at-1", tokens.AccessToken)
	assert.Equal(t, "rt-1", *tokens.RefreshToken)
	assert.Equal(t, []string{"moment"}, tokens.Scopes)
	assert.NotNil(t, tokens.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(21599*time.Second), *tokens.ExpiresAt, 5*time.Second)
}

func TestRefresh(t *testing.T) {
	t.Run("refresh token omitido mantém o anterior", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, r.ParseForm())
			assert.Equal(t, "refresh_token", r.PostForm.Get("grant_type"))
			assert.Equal(t, "rt-old", r.PostForm.Get("refresh_token"))

			// O kauth só devolve refresh_token quando o atual está para expirar
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at-2","expires_in":21599}`))
		}))
		defer server.Close()

		svc := testService(server.URL)

		tokens, err := svc.Refresh(context.Background(), "rt-old")
		assert.NoError(t, err)
		assert.Equal(t, "at-2", tokens.AccessToken)
		assert.Nil(t, tokens.RefreshToken)
	})

	t.Run("refresh token rotacionado é devolvido", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at-3","refresh_token":"rt-new","expires_in":21599}`))
		}))
		defer server.Close()

		svc := testService(server.URL)

		tokens, err := svc.Refresh(context.Background(), "rt-old")
		assert.NoError(t, err)
		assert.Equal(t, "rt-new", *tokens.RefreshToken)
	})

	t.Run("refresh token revogado vira InvalidGrantError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant","error_code":"KOE319","error_message":"refresh token expirado"}`))
		}))
		defer server.Close()

		svc := testService(server.URL)

		_, err := svc.Refresh(context.Background(), "rt-dead")
		assert.True(t, platform.IsInvalidGrant(err))
	})
}

func TestFetchCampaigns(t *testing.T) {
	window := domain.SyncWindow{
		Start: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	}

	t.Run("página é convertida em registros normalizados", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/openapi/v4/campaigns/report", r.URL.Path)
			assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
			assert.Equal(t, "acc-1", r.URL.Query().Get("adAccountId"))
			assert.Equal(t, "2024-05-01", r.URL.Query().Get("since"))
			assert.Equal(t, "2024-05-31", r.URL.Query().Get("until"))
			assert.Equal(t, "1", r.URL.Query().Get("page"))

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"campaigns": [
					{"id": 101, "name": "Promo Maio", "status": "ON", "date": "2024-05-15",
					 "imp": 5000, "click": 250, "spending": 99.5, "conversion": 12, "conversion_value": 480.0},
					{"id": 102, "name": "Data quebrada", "status": "ON", "date": "15/05/2024",
					 "imp": 1, "click": 1, "spending": 1, "conversion": 0, "conversion_value": 0}
				],
				"total_count": 2, "page": 1, "size": 100
			}`))
		}))
		defer server.Close()

		svc := testService(server.URL)
		pager := svc.FetchCampaigns("at-1", "acc-1", window)

		records, hasMore, err := pager.Next(context.Background())
		assert.NoError(t, err)
		assert.False(t, hasMore)

		// O registro com data fora do formato é descartado
		assert.Len(t, records, 1)
		record := records[0]
		assert.Equal(t, domain.PlatformKakao, record.Platform)
		assert.Equal(t, "101", record.PlatformCampaignID)
		assert.Equal(t, "acc-1", record.ExternalAccountID)
		assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), record.Date)
		assert.Equal(t, int64(5000), record.Impressions)
		assert.Equal(t, int64(250), record.Clicks)
		assert.Equal(t, 99.5, record.Spend)
		assert.Equal(t, int64(12), record.Conversions)
		assert.Equal(t, 480.0, record.Revenue)
	})

	t.Run("páginas seguintes avançam o cursor", func(t *testing.T) {
		pages := make([]string, 0, 2)
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pages = append(pages, r.URL.Query().Get("page"))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"campaigns": [], "total_count": 0, "page": 1, "size": 100}`))
		}))
		defer server.Close()

		svc := testService(server.URL)
		pager := svc.FetchCampaigns("at-1", "acc-1", window)

		_, _, err := pager.Next(context.Background())
		assert.NoError(t, err)
		_, _, err = pager.Next(context.Background())
		assert.NoError(t, err)

		assert.Equal(t, []string{"1", "2"}, pages)
	})

	t.Run("401 durante a busca sinaliza token rejeitado", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"msg":"invalid token"}`))
		}))
		defer server.Close()

		svc := testService(server.URL)
		pager := svc.FetchCampaigns("at-expired", "acc-1", window)

		_, _, err := pager.Next(context.Background())
		assert.True(t, platform.IsAuthRejected(err))
	})

	t.Run("429 propaga o Retry-After", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "15")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		svc := testService(server.URL)
		pager := svc.FetchCampaigns("at-1", "acc-1", window)

		_, _, err := pager.Next(context.Background())
		rateLimited, ok := platform.AsRateLimited(err)
		assert.True(t, ok)
		assert.Equal(t, 15*time.Second, rateLimited.RetryAfter)
	})
}
