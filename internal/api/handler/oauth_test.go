package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seongpil0948/all-ad-sub006/internal/api/handler/router"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/linking"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening"
)

// stubLinker permite configurar cada operação por teste
type stubLinker struct {
	startLink       func(teamID string, p domain.Platform) (string, error)
	completeLink    func(ctx context.Context, state, code string) (*domain.Credential, error)
	disconnect      func(ctx context.Context, teamID string, p domain.Platform) error
	listConnections func(teamID string) ([]*linking.ConnectionStatus, error)
}

func (s *stubLinker) StartLink(teamID string, p domain.Platform) (string, error) {
	return s.startLink(teamID, p)
}

func (s *stubLinker) CompleteLink(ctx context.Context, state, code string) (*domain.Credential, error) {
	return s.completeLink(ctx, state, code)
}

func (s *stubLinker) Disconnect(ctx context.Context, teamID string, p domain.Platform) error {
	return s.disconnect(ctx, teamID, p)
}

func (s *stubLinker) ListConnections(teamID string) ([]*linking.ConnectionStatus, error) {
	return s.listConnections(teamID)
}

func testAuthCfg() config.Auth {
	return config.Auth{
		RedirectBaseURL:     "https://api.example.com",
		LinkSuccessRedirect: "https://app.example.com/integrations/success",
		LinkFailureRedirect: "https://app.example.com/integrations/failure",
	}
}

func newOAuthTestRouter(linker linking.Linker) router.Router {
	return router.New(
		router.WithRoutes(OAuth(linker, testAuthCfg())...),
		router.WithRoutes(Connections(linker)...),
	)
}

func TestStartAuthorization(t *testing.T) {
	t.Run("redireciona para a tela de consentimento", func(t *testing.T) {
		linker := &stubLinker{
			startLink: func(teamID string, p domain.Platform) (string, error) {
				assert.Equal(t, "team-1", teamID)
				assert.Equal(t, domain.PlatformGoogle, p)
				return "https://accounts.google.com/o/oauth2/auth?state=abc", nil
			},
		}

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/oauth/google/authorize?teamId=team-1", nil)
		newOAuthTestRouter(linker).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusFound, recorder.Code)
		assert.Equal(t, "https://accounts.google.com/o/oauth2/auth?state=abc", recorder.Header().Get("Location"))
	})

	t.Run("plataforma desconhecida", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/oauth/orkut/authorize?teamId=team-1", nil)
		newOAuthTestRouter(&stubLinker{}).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("teamId ausente", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/oauth/google/authorize", nil)
		newOAuthTestRouter(&stubLinker{}).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("plataforma vinculada por chaves", func(t *testing.T) {
		linker := &stubLinker{
			startLink: func(string, domain.Platform) (string, error) {
				return "", linking.ErrAuthorizationKeysOnly
			},
		}

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/v1/oauth/coupang/authorize?teamId=team-1", nil)
		newOAuthTestRouter(linker).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestHandleCallback(t *testing.T) {
	tests := []struct {
		name         string
		path         string
		linker       *stubLinker
		wantLocation string
	}{
		{
			name:         "consentimento recusado",
			path:         "/v1/oauth/google/callback?error=access_denied",
			linker:       &stubLinker{},
			wantLocation: "https://app.example.com/integrations/failure?reason=consent_denied",
		},
		{
			name:         "callback sem code ou state",
			path:         "/v1/oauth/google/callback?code=abc",
			linker:       &stubLinker{},
			wantLocation: "https://app.example.com/integrations/failure?reason=missing_parameters",
		},
		{
			name: "state inválido",
			path: "/v1/oauth/google/callback?code=abc&state=forjado",
			linker: &stubLinker{
				completeLink: func(context.Context, string, string) (*domain.Credential, error) {
					return nil, linking.ErrInvalidState
				},
			},
			wantLocation: "https://app.example.com/integrations/failure?reason=invalid_state",
		},
		{
			name: "falha na troca do código",
			path: "/v1/oauth/google/callback?code=abc&state=valido",
			linker: &stubLinker{
				completeLink: func(context.Context, string, string) (*domain.Credential, error) {
					return nil, errors.New("provedor fora do ar")
				},
			},
			wantLocation: "https://app.example.com/integrations/failure?reason=exchange_failed",
		},
		{
			name: "vinculação concluída",
			path: "/v1/oauth/google/callback?code=abc&state=valido",
			linker: &stubLinker{
				completeLink: func(_ context.Context, state, code string) (*domain.Credential, error) {
					assert.Equal(t, "valido", state)
					assert.Equal(t, "abc", code)
					return &domain.Credential{TeamID: "team-1", Platform: domain.PlatformGoogle}, nil
				},
			},
			wantLocation: "https://app.example.com/integrations/success?platform=google",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			newOAuthTestRouter(tt.linker).ServeHTTP(recorder, req)

			assert.Equal(t, http.StatusFound, recorder.Code)
			assert.Equal(t, tt.wantLocation, recorder.Header().Get("Location"))
		})
	}
}

func TestListConnectionsHandler(t *testing.T) {
	linker := &stubLinker{
		listConnections: func(teamID string) ([]*linking.ConnectionStatus, error) {
			assert.Equal(t, "team-1", teamID)
			return []*linking.ConnectionStatus{
				{Platform: domain.PlatformGoogle, Connected: true},
				{Platform: domain.PlatformKakao, Connected: false},
			}, nil
		},
	}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/teams/team-1/connections", nil)
	newOAuthTestRouter(linker).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "team-1", body["teamId"])
	assert.Len(t, body["connections"], 2)
}

func TestDisconnectPlatformHandler(t *testing.T) {
	t.Run("desvincula a plataforma", func(t *testing.T) {
		linker := &stubLinker{
			disconnect: func(_ context.Context, teamID string, p domain.Platform) error {
				assert.Equal(t, "team-1", teamID)
				assert.Equal(t, domain.PlatformKakao, p)
				return nil
			},
		}

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/teams/team-1/connections/kakao", nil)
		newOAuthTestRouter(linker).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var body map[string]any
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
		assert.Equal(t, true, body["success"])
	})

	t.Run("plataforma sem vínculo ativo", func(t *testing.T) {
		linker := &stubLinker{
			disconnect: func(context.Context, string, domain.Platform) error {
				return tokening.NewTokenError(tokening.ErrNotConnected, "team-1", "kakao", "")
			},
		}

		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodDelete, "/v1/teams/team-1/connections/kakao", nil)
		newOAuthTestRouter(linker).ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}
