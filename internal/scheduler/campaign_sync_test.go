package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	platformmocks "github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/mocks"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/repository/mocks"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening"
	tokeningmocks "github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening/mocks"
)

var syncTestNow = time.Date(2024, 6, 1, 3, 0, 0, 0, time.UTC)

func testSyncConfig() config.CampaignSync {
	return config.CampaignSync{
		FullCron:          "0 2 * * *",
		IncrementalCron:   "0 * * * *",
		MaxConcurrentJobs: 2,
		MaxAttempts:       3,
		FullLookbackDays:  30,
		BatchDeadline:     1 * time.Minute,
		RetryBackoffFloor: 1 * time.Second,
		Enabled:           true,
	}
}

type syncTestDeps struct {
	credentialRepo *mocks.MockCredentialRepository
	metricRepo     *mocks.MockCampaignMetricRepository
	tokenManager   *tokeningmocks.MockTokenManager
	adapter        *platformmocks.MockAdapter
	sleeps         *[]time.Duration
}

func newSyncTestService(ctrl *gomock.Controller, p domain.Platform) (*CampaignSyncService, *syncTestDeps) {
	credentialRepo := mocks.NewMockCredentialRepository(ctrl)
	metricRepo := mocks.NewMockCampaignMetricRepository(ctrl)
	tokenManager := tokeningmocks.NewMockTokenManager(ctrl)
	adapter := platformmocks.NewMockAdapter(ctrl)
	adapter.EXPECT().Platform().Return(p).AnyTimes()

	service := NewCampaignSyncService(
		credentialRepo,
		metricRepo,
		tokenManager,
		platform.NewRegistry(adapter),
		testSyncConfig(),
	)
	service.now = func() time.Time { return syncTestNow }

	sleeps := make([]time.Duration, 0)
	service.sleepFn = func(_ context.Context, d time.Duration) { sleeps = append(sleeps, d) }

	return service, &syncTestDeps{
		credentialRepo: credentialRepo,
		metricRepo:     metricRepo,
		tokenManager:   tokenManager,
		adapter:        adapter,
		sleeps:         &sleeps,
	}
}

func syncCredentialFixture(id, teamID string, p domain.Platform) *domain.Credential {
	accountID := "acc-" + id
	return &domain.Credential{
		ID:          id,
		TeamID:      teamID,
		Platform:    p,
		AccountID:   &accountID,
		AccessToken: "access-" + id,
		IsActive:    true,
	}
}

func metricPage(p domain.Platform, campaignID string) []domain.CampaignMetricRecord {
	return []domain.CampaignMetricRecord{
		{
			Platform:           p,
			PlatformCampaignID: campaignID,
			Date:               syncTestNow.AddDate(0, 0, -1),
			Name:               "Campanha " + campaignID,
			Impressions:        1000,
			Clicks:             50,
			Spend:              12.34,
		},
	}
}

func TestRunSyncSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformGoogle)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformGoogle)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)
	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformGoogle).Return("valid-token", nil)

	pager := platformmocks.NewMockCampaignPager(ctrl)
	gomock.InOrder(
		pager.EXPECT().Next(gomock.Any()).Return(metricPage(domain.PlatformGoogle, "g-1"), true, nil),
		pager.EXPECT().Next(gomock.Any()).Return(metricPage(domain.PlatformGoogle, "g-2"), false, nil),
	)
	deps.adapter.EXPECT().FetchCampaigns("valid-token", "acc-cred-1", gomock.Any()).Return(pager)

	// O TeamID do job é propagado para cada registro antes da gravação
	deps.metricRepo.EXPECT().UpsertMetrics(gomock.Any()).
		DoAndReturn(func(records []domain.CampaignMetricRecord) (int, error) {
			for _, record := range records {
				assert.Equal(t, "team-1", record.TeamID)
			}
			return len(records), nil
		}).Times(2)

	deps.credentialRepo.EXPECT().UpdateLastSyncedAt("cred-1", syncTestNow).Return(nil)

	summary := service.runSync(context.Background(), domain.SyncTypeIncremental)

	assert.NotNil(t, summary)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 0, summary.FailedRetry)
	assert.Equal(t, 0, summary.FailedTerminal)
	assert.Equal(t, 2, summary.Records)
}

func TestRunSyncRateLimitedRetriesAndSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformTikTok)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformTikTok)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)
	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformTikTok).Return("valid-token", nil).Times(2)

	rateLimited := &platform.RateLimitedError{Platform: "tiktok", RetryAfter: 30 * time.Second}

	limitedPager := platformmocks.NewMockCampaignPager(ctrl)
	limitedPager.EXPECT().Next(gomock.Any()).Return(nil, false, rateLimited)

	okPager := platformmocks.NewMockCampaignPager(ctrl)
	okPager.EXPECT().Next(gomock.Any()).Return(metricPage(domain.PlatformTikTok, "t-1"), false, nil)

	gomock.InOrder(
		deps.adapter.EXPECT().FetchCampaigns("valid-token", "acc-cred-1", gomock.Any()).Return(limitedPager),
		deps.adapter.EXPECT().FetchCampaigns("valid-token", "acc-cred-1", gomock.Any()).Return(okPager),
	)

	deps.metricRepo.EXPECT().UpsertMetrics(gomock.Any()).Return(1, nil)
	deps.credentialRepo.EXPECT().UpdateLastSyncedAt("cred-1", gomock.Any()).Return(nil)

	summary := service.runSync(context.Background(), domain.SyncTypeIncremental)

	assert.Equal(t, 1, summary.Succeeded)
	// A espera respeita o Retry-After do provedor quando maior que o piso
	assert.Equal(t, []time.Duration{30 * time.Second}, *deps.sleeps)
}

func TestRunSyncRateLimitedExhaustsAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformTikTok)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformTikTok)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)
	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformTikTok).Return("valid-token", nil).Times(3)

	// Retry-After abaixo do piso de backoff
	rateLimited := &platform.RateLimitedError{Platform: "tiktok", RetryAfter: 100 * time.Millisecond}

	pager := platformmocks.NewMockCampaignPager(ctrl)
	pager.EXPECT().Next(gomock.Any()).Return(nil, false, rateLimited).Times(3)
	deps.adapter.EXPECT().FetchCampaigns("valid-token", "acc-cred-1", gomock.Any()).Return(pager).Times(3)

	summary := service.runSync(context.Background(), domain.SyncTypeIncremental)

	assert.Equal(t, 0, summary.Succeeded)
	// Esgotadas as tentativas, o job encerra terminal nesta rodada
	assert.Equal(t, 1, summary.FailedTerminal)
	assert.Equal(t, 0, summary.FailedRetry)
	// Não dorme após a última tentativa
	assert.Equal(t, []time.Duration{1 * time.Second, 1 * time.Second}, *deps.sleeps)
}

func TestRunSyncAuthRejectedForcesRefreshAndRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformFacebook)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformFacebook)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)

	rejected := &platform.AuthRejectedError{Platform: "facebook", Reason: "token revogado fora de banda"}

	rejectedPager := platformmocks.NewMockCampaignPager(ctrl)
	rejectedPager.EXPECT().Next(gomock.Any()).Return(nil, false, rejected)

	okPager := platformmocks.NewMockCampaignPager(ctrl)
	okPager.EXPECT().Next(gomock.Any()).Return(metricPage(domain.PlatformFacebook, "m-1"), false, nil)

	gomock.InOrder(
		deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformFacebook).Return("stale-token", nil),
		deps.tokenManager.EXPECT().ForceRefresh(gomock.Any(), "team-1", domain.PlatformFacebook).Return("fresh-token", nil),
	)
	gomock.InOrder(
		deps.adapter.EXPECT().FetchCampaigns("stale-token", "acc-cred-1", gomock.Any()).Return(rejectedPager),
		deps.adapter.EXPECT().FetchCampaigns("fresh-token", "acc-cred-1", gomock.Any()).Return(okPager),
	)

	deps.metricRepo.EXPECT().UpsertMetrics(gomock.Any()).Return(1, nil)
	deps.credentialRepo.EXPECT().UpdateLastSyncedAt("cred-1", gomock.Any()).Return(nil)

	summary := service.runSync(context.Background(), domain.SyncTypeIncremental)

	assert.Equal(t, 1, summary.Succeeded)
	assert.Empty(t, *deps.sleeps)
}

func TestRunSyncAuthRejectedTwiceIsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformFacebook)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformFacebook)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)

	rejected := &platform.AuthRejectedError{Platform: "facebook", Reason: "token revogado"}

	pager := platformmocks.NewMockCampaignPager(ctrl)
	pager.EXPECT().Next(gomock.Any()).Return(nil, false, rejected).Times(2)

	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformFacebook).Return("stale-token", nil)
	deps.tokenManager.EXPECT().ForceRefresh(gomock.Any(), "team-1", domain.PlatformFacebook).Return("still-bad-token", nil)
	deps.adapter.EXPECT().FetchCampaigns(gomock.Any(), "acc-cred-1", gomock.Any()).Return(pager).Times(2)

	summary := service.runSync(context.Background(), domain.SyncTypeIncremental)

	assert.Equal(t, 0, summary.Succeeded)
	assert.Equal(t, 1, summary.FailedTerminal)
}

func TestRunSyncReauthRequiredIsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformGoogle)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformGoogle)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)
	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformGoogle).
		Return("", tokening.NewTokenError(tokening.ErrReauthRequired, "team-1", "google", ""))

	summary := service.runSync(context.Background(), domain.SyncTypeIncremental)

	assert.Equal(t, 1, summary.FailedTerminal)
	assert.Empty(t, *deps.sleeps)
}

func TestRunSyncIsolatesTeamFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformGoogle)

	healthy := syncCredentialFixture("cred-1", "team-1", domain.PlatformGoogle)
	broken := syncCredentialFixture("cred-2", "team-2", domain.PlatformGoogle)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).
		Return([]*domain.Credential{healthy, broken}, nil)

	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformGoogle).Return("valid-token", nil)
	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-2", domain.PlatformGoogle).
		Return("", tokening.NewTokenError(tokening.ErrNotConnected, "team-2", "google", ""))

	pager := platformmocks.NewMockCampaignPager(ctrl)
	pager.EXPECT().Next(gomock.Any()).Return(metricPage(domain.PlatformGoogle, "g-1"), false, nil)
	deps.adapter.EXPECT().FetchCampaigns("valid-token", "acc-cred-1", gomock.Any()).Return(pager)

	deps.metricRepo.EXPECT().UpsertMetrics(gomock.Any()).Return(1, nil)
	deps.credentialRepo.EXPECT().UpdateLastSyncedAt("cred-1", gomock.Any()).Return(nil)

	summary := service.runSync(context.Background(), domain.SyncTypeIncremental)

	// A falha de um time não derruba a sincronização dos demais
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Succeeded)
	assert.Equal(t, 1, summary.FailedTerminal)
}

func TestRunSyncCancelledBatchStopsJobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformGoogle)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformGoogle)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)

	// Lote cancelado: nenhum job chega a consultar o token manager
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary := service.runSync(ctx, domain.SyncTypeIncremental)

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.FailedTerminal)
	assert.Empty(t, *deps.sleeps)
}

func TestSleepContextReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	sleepContext(ctx, 5*time.Second)

	// A espera não segura o worker quando o lote já foi cancelado
	assert.Less(t, time.Since(start), 1*time.Second)
}

func TestGetStatusDuringSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, deps := newSyncTestService(ctrl, domain.PlatformGoogle)
	credential := syncCredentialFixture("cred-1", "team-1", domain.PlatformGoogle)

	deps.credentialRepo.EXPECT().ListActiveCredentials(nil).Return([]*domain.Credential{credential}, nil)
	deps.tokenManager.EXPECT().GetValidToken(gomock.Any(), "team-1", domain.PlatformGoogle).Return("valid-token", nil)

	pager := platformmocks.NewMockCampaignPager(ctrl)
	pager.EXPECT().Next(gomock.Any()).Return(metricPage(domain.PlatformGoogle, "g-1"), false, nil)
	deps.adapter.EXPECT().FetchCampaigns("valid-token", "acc-cred-1", gomock.Any()).Return(pager)

	deps.metricRepo.EXPECT().UpsertMetrics(gomock.Any()).Return(1, nil)
	deps.credentialRepo.EXPECT().UpdateLastSyncedAt("cred-1", gomock.Any()).Return(nil)

	// Leituras de status concorrentes com a rodada não podem corromper os
	// campos de progresso
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 1000; i++ {
			service.GetStatus()
		}
	}()

	service.runSync(context.Background(), domain.SyncTypeIncremental)
	<-done

	status := service.GetStatus()
	assert.Equal(t, false, status["sync_running"])
	assert.Equal(t, syncTestNow, status["last_sync_started_at"])
	assert.Equal(t, syncTestNow, status["last_sync_completed_at"])
	assert.NotNil(t, status["last_summary"])
}

func TestWindowFor(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _ := newSyncTestService(ctrl, domain.PlatformGoogle)

	lastSynced := syncTestNow.AddDate(0, 0, -3)

	tests := []struct {
		name       string
		syncType   domain.SyncType
		credential *domain.Credential
		wantStart  time.Time
	}{
		{
			name:       "FULL cobre o lookback completo",
			syncType:   domain.SyncTypeFull,
			credential: &domain.Credential{},
			wantStart:  syncTestNow.AddDate(0, 0, -30),
		},
		{
			name:       "INCREMENTAL continua da última sincronização",
			syncType:   domain.SyncTypeIncremental,
			credential: &domain.Credential{LastSyncedAt: &lastSynced},
			wantStart:  lastSynced,
		},
		{
			name:       "INCREMENTAL sem marca d'água cobre o último dia",
			syncType:   domain.SyncTypeIncremental,
			credential: &domain.Credential{},
			wantStart:  syncTestNow.AddDate(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			window := service.windowFor(tt.credential, tt.syncType)
			assert.Equal(t, tt.wantStart, window.Start)
			assert.Equal(t, syncTestNow, window.End)
		})
	}
}

func TestTriggerManualSyncSkipsWhenRunning(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	service, _ := newSyncTestService(ctrl, domain.PlatformGoogle)

	service.syncMutex.Lock()
	service.syncRunning = true
	service.syncMutex.Unlock()

	// Sem expectativas nos mocks: nada pode ser chamado enquanto outra rodada roda
	service.TriggerManualSync(domain.SyncTypeFull)

	status := service.GetStatus()
	assert.Equal(t, true, status["sync_running"])
}
