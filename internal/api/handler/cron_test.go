package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/api/handler/router"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/scheduler"
)

const testCronSecret = "segredo-de-teste"

// stubCredentialRepo evita dependência de banco nos testes de handler
type stubCredentialRepo struct{}

func (stubCredentialRepo) GetActiveCredential(string, domain.Platform) (*domain.Credential, error) {
	return nil, nil
}

func (stubCredentialRepo) GetCredentialByID(string) (*domain.Credential, error) { return nil, nil }

func (stubCredentialRepo) ListActiveCredentials([]domain.Platform) ([]*domain.Credential, error) {
	return nil, nil
}

func (stubCredentialRepo) SaveCredential(*domain.Credential) error { return nil }

func (stubCredentialRepo) UpdateTokens(string, *domain.TokenSet, time.Time) error { return nil }

func (stubCredentialRepo) UpdateLastSyncedAt(string, time.Time) error { return nil }

func (stubCredentialRepo) DeactivateCredential(string) error { return nil }

type stubMetricRepo struct{}

func (stubMetricRepo) UpsertMetrics([]domain.CampaignMetricRecord) (int, error) { return 0, nil }

func newCronTestRouter() router.Router {
	service := scheduler.NewCampaignSyncService(
		stubCredentialRepo{},
		stubMetricRepo{},
		nil,
		platform.NewRegistry(),
		config.CampaignSync{MaxConcurrentJobs: 1, MaxAttempts: 1, BatchDeadline: 1 * time.Second},
	)

	return router.New(router.WithRoutes(CronJobs(service, testCronSecret)...))
}

func TestTriggerSync(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		authHeader string
		wantStatus int
		check      func(t *testing.T, body map[string]any)
	}{
		{
			name:       "sem header de autorização",
			path:       "/v1/cron/sync/FULL",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "com segredo incorreto",
			path:       "/v1/cron/sync/FULL",
			authHeader: "Bearer segredo-errado",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "sem o prefixo Bearer",
			path:       "/v1/cron/sync/FULL",
			authHeader: testCronSecret,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "tipo de sincronização desconhecido",
			path:       "/v1/cron/sync/TURBO",
			authHeader: "Bearer " + testCronSecret,
			wantStatus: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "VAL_001", body["code"])
			},
		},
		{
			name:       "dispara sincronização FULL",
			path:       "/v1/cron/sync/FULL",
			authHeader: "Bearer " + testCronSecret,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, true, body["success"])
				assert.Equal(t, "FULL", body["syncType"])
				assert.NotEmpty(t, body["timestamp"])
			},
		},
		{
			name:       "aceita o tipo em minúsculas",
			path:       "/v1/cron/sync/incremental",
			authHeader: "Bearer " + testCronSecret,
			wantStatus: http.StatusOK,
			check: func(t *testing.T, body map[string]any) {
				assert.Equal(t, "INCREMENTAL", body["syncType"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testRouter := newCronTestRouter()

			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			recorder := httptest.NewRecorder()
			testRouter.ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.check != nil {
				var body map[string]any
				assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
				tt.check(t, body)
			}
		})
	}
}

func TestGetCronStatus(t *testing.T) {
	testRouter := newCronTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/v1/cron/status", nil)
	req.Header.Set("Authorization", "Bearer "+testCronSecret)

	recorder := httptest.NewRecorder()
	testRouter.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))

	campaignSync, ok := body["campaign_sync"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, false, campaignSync["sync_running"])
}
