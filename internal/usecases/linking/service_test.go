package linking

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
	tokeningmocks "github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening/mocks"
)

func testAuthConfig() config.Auth {
	return config.Auth{
		StateSecret:     "state-secret-for-tests",
		RedirectBaseURL: "https://api.example.com",
	}
}

func newLinkTestService(ctrl *gomock.Controller, adapters ...platform.Adapter) (*Service, *tokeningmocks.MockTokenManager, *mocks.MockCredentialRepository) {
	tokenManager := tokeningmocks.NewMockTokenManager(ctrl)
	credentialRepo := mocks.NewMockCredentialRepository(ctrl)
	svc := NewService(platform.NewRegistry(adapters...), tokenManager, credentialRepo, testAuthConfig())
	return svc, tokenManager, credentialRepo
}

func TestStartLink(t *testing.T) {
	t.Run("gera a URL de consentimento com state assinado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		adapter := platformmocks.NewMockAdapter(ctrl)
		adapter.EXPECT().Platform().Return(domain.PlatformGoogle).AnyTimes()

		var capturedState string
		adapter.EXPECT().
			BuildAuthorizationURL("https://api.example.com/v1/oauth/google/callback", gomock.Any(), defaultScopes[domain.PlatformGoogle]).
			DoAndReturn(func(_ string, state string, _ []string) (string, error) {
				capturedState = state
				return "https://accounts.google.com/o/oauth2/auth?state=" + state, nil
			})

		svc, _, _ := newLinkTestService(ctrl, adapter)

		authURL, err := svc.StartLink("team-1", domain.PlatformGoogle)
		assert.NoError(t, err)
		assert.Contains(t, authURL, "https://accounts.google.com/o/oauth2/auth")

		// O state gerado carrega o par (time, plataforma) que iniciou o fluxo
		claims, err := svc.verifyState(capturedState)
		assert.NoError(t, err)
		assert.Equal(t, "team-1", claims.TeamID)
		assert.Equal(t, "google", claims.Platform)
		assert.NotEmpty(t, claims.Nonce)
	})

	t.Run("plataforma desconhecida", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _, _ := newLinkTestService(ctrl)

		_, err := svc.StartLink("team-1", domain.PlatformGoogle)
		assert.ErrorIs(t, err, ErrUnsupportedPlatform)
	})

	t.Run("plataforma vinculada por chaves não tem fluxo de autorização", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		adapter := platformmocks.NewMockAdapter(ctrl)
		adapter.EXPECT().Platform().Return(domain.PlatformCoupang).AnyTimes()
		adapter.EXPECT().BuildAuthorizationURL(gomock.Any(), gomock.Any(), gomock.Any()).
			Return("", platform.ErrAuthorizationNotSupported)

		svc, _, _ := newLinkTestService(ctrl, adapter)

		_, err := svc.StartLink("team-1", domain.PlatformCoupang)
		assert.ErrorIs(t, err, ErrAuthorizationKeysOnly)
	})
}

func TestCompleteLink(t *testing.T) {
	t.Run("state válido finaliza a troca do código", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, tokenManager, _ := newLinkTestService(ctrl)

		state, err := svc.signState("team-1", domain.PlatformGoogle)
		assert.NoError(t, err)

		want := &domain.Credential{ID: "cred-1", TeamID: "team-1", Platform: domain.PlatformGoogle}
		tokenManager.EXPECT().
			ExchangeAndStore(gomock.Any(), "team-1", domain.PlatformGoogle, "auth-code", "https://api.example.com/v1/oauth/google/callback").
			Return(want, nil)

		credential, err := svc.CompleteLink(context.Background(), state, "auth-code")
		assert.NoError(t, err)
		assert.Equal(t, want, credential)
	})

	t.Run("state expirado é rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _, _ := newLinkTestService(ctrl)
		svc.now = func() time.Time { return time.Now().Add(-30 * time.Minute) }

		state, err := svc.signState("team-1", domain.PlatformGoogle)
		assert.NoError(t, err)

		svc.now = time.Now

		_, err = svc.CompleteLink(context.Background(), state, "auth-code")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("state assinado com outro segredo é rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		forger, _, _ := newLinkTestService(ctrl)
		forger.cfg.StateSecret = "outro-segredo"
		forged, err := forger.signState("team-1", domain.PlatformGoogle)
		assert.NoError(t, err)

		svc, _, _ := newLinkTestService(ctrl)

		_, err = svc.CompleteLink(context.Background(), forged, "auth-code")
		assert.ErrorIs(t, err, ErrInvalidState)
	})

	t.Run("state que não é um JWT é rejeitado", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _, _ := newLinkTestService(ctrl)

		_, err := svc.CompleteLink(context.Background(), "lixo-qualquer", "auth-code")
		assert.ErrorIs(t, err, ErrInvalidState)
	})
}

func TestDisconnect(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, tokenManager, _ := newLinkTestService(ctrl)

	tokenManager.EXPECT().Revoke(gomock.Any(), "team-1", domain.PlatformGoogle).Return(nil)

	err := svc.Disconnect(context.Background(), "team-1", domain.PlatformGoogle)
	assert.NoError(t, err)
}

func TestListConnections(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _, credentialRepo := newLinkTestService(ctrl)

	accountID := "acc-1"
	connected := &domain.Credential{
		ID:        "cred-1",
		TeamID:    "team-1",
		Platform:  domain.PlatformGoogle,
		AccountID: &accountID,
		IsActive:  true,
	}

	for _, p := range domain.AllPlatforms {
		if p == domain.PlatformGoogle {
			credentialRepo.EXPECT().GetActiveCredential("team-1", p).Return(connected, nil)
			continue
		}
		credentialRepo.EXPECT().GetActiveCredential("team-1", p).Return(nil, nil)
	}

	statuses, err := svc.ListConnections("team-1")
	assert.NoError(t, err)
	assert.Len(t, statuses, len(domain.AllPlatforms))

	byPlatform := make(map[domain.Platform]*ConnectionStatus, len(statuses))
	for _, status := range statuses {
		byPlatform[status.Platform] = status
	}

	assert.True(t, byPlatform[domain.PlatformGoogle].Connected)
	assert.Equal(t, "acc-1", *byPlatform[domain.PlatformGoogle].AccountID)
	assert.False(t, byPlatform[domain.PlatformKakao].Connected)
	assert.Nil(t, byPlatform[domain.PlatformKakao].AccountID)
}
