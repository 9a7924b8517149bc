package linking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/repository"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening"
	"github.com/seongpil0948/all-ad-sub006/pkg/utils"
)

// stateTTL limita a vida do parâmetro state do fluxo de autorização
const stateTTL = 10 * time.Minute

var (
	ErrInvalidState          = errors.New("state de autorização inválido ou expirado")
	ErrUnsupportedPlatform   = errors.New("plataforma não suportada")
	ErrAuthorizationKeysOnly = errors.New("plataforma vinculada por chaves de API, sem fluxo de autorização")
)

// defaultScopes são os escopos solicitados no consentimento de cada plataforma
var defaultScopes = map[domain.Platform][]string{
	domain.PlatformGoogle:   {"https://www.googleapis.com/auth/adwords"},
	domain.PlatformFacebook: {"ads_read", "ads_management"},
	domain.PlatformTikTok:   {},
	domain.PlatformAmazon:   {"advertising::campaign_management"},
	domain.PlatformKakao:    {"moment"},
	domain.PlatformNaver:    {},
}

// stateClaims é o conteúdo assinado do parâmetro state: amarra o callback ao
// par (time, plataforma) que iniciou o fluxo e carrega um nonce descartável
type stateClaims struct {
	TeamID   string `json:"team_id"`
	Platform string `json:"platform"`
	Nonce    string `json:"nonce"`
	jwt.RegisteredClaims
}

// ConnectionStatus resume o estado do vínculo de um time com uma plataforma
type ConnectionStatus struct {
	Platform        domain.Platform `json:"platform"`
	Connected       bool            `json:"connected"`
	AccountID       *string         `json:"accountId,omitempty"`
	ExpiresAt       *time.Time      `json:"expiresAt,omitempty"`
	LastRefreshedAt *time.Time      `json:"lastRefreshedAt,omitempty"`
	LastSyncedAt    *time.Time      `json:"lastSyncedAt,omitempty"`
}

// Linker conduz o fluxo de vinculação OAuth de ponta a ponta
type Linker interface {
	StartLink(teamID string, p domain.Platform) (string, error)
	CompleteLink(ctx context.Context, state, code string) (*domain.Credential, error)
	Disconnect(ctx context.Context, teamID string, p domain.Platform) error
	ListConnections(teamID string) ([]*ConnectionStatus, error)
}

type Service struct {
	registry       *platform.Registry
	tokenManager   tokening.TokenManager
	credentialRepo repository.CredentialRepository
	cfg            config.Auth
	now            func() time.Time
}

func NewService(
	registry *platform.Registry,
	tokenManager tokening.TokenManager,
	credentialRepo repository.CredentialRepository,
	cfg config.Auth,
) *Service {
	return &Service{
		registry:       registry,
		tokenManager:   tokenManager,
		credentialRepo: credentialRepo,
		cfg:            cfg,
		now:            time.Now,
	}
}

func (s *Service) redirectURI(p domain.Platform) string {
	return fmt.Sprintf("%s/v1/oauth/%s/callback", s.cfg.RedirectBaseURL, p)
}

// StartLink gera a URL de consentimento da plataforma com um state assinado
func (s *Service) StartLink(teamID string, p domain.Platform) (string, error) {
	adapter, err := s.registry.Get(p)
	if err != nil {
		return "", ErrUnsupportedPlatform
	}

	state, err := s.signState(teamID, p)
	if err != nil {
		return "", err
	}

	authURL, err := adapter.BuildAuthorizationURL(s.redirectURI(p), state, defaultScopes[p])
	if err != nil {
		if errors.Is(err, platform.ErrAuthorizationNotSupported) {
			return "", ErrAuthorizationKeysOnly
		}
		return "", err
	}

	return authURL, nil
}

// CompleteLink valida o state do callback e finaliza a vinculação trocando o
// código de autorização por tokens
func (s *Service) CompleteLink(ctx context.Context, state, code string) (*domain.Credential, error) {
	claims, err := s.verifyState(state)
	if err != nil {
		logrus.WithError(err).Warn("State de autorização rejeitado no callback")
		return nil, ErrInvalidState
	}

	p, err := domain.ParsePlatform(claims.Platform)
	if err != nil {
		return nil, ErrInvalidState
	}

	return s.tokenManager.ExchangeAndStore(ctx, claims.TeamID, p, code, s.redirectURI(p))
}

// Disconnect desfaz o vínculo: revoga junto ao provedor quando possível e
// desativa a credencial (soft-delete)
func (s *Service) Disconnect(ctx context.Context, teamID string, p domain.Platform) error {
	return s.tokenManager.Revoke(ctx, teamID, p)
}

// ListConnections retorna o estado de vínculo do time em todas as plataformas
func (s *Service) ListConnections(teamID string) ([]*ConnectionStatus, error) {
	statuses := make([]*ConnectionStatus, 0, len(domain.AllPlatforms))

	for _, p := range domain.AllPlatforms {
		credential, err := s.credentialRepo.GetActiveCredential(teamID, p)
		if err != nil {
			return nil, err
		}

		status := &ConnectionStatus{Platform: p}
		if credential != nil {
			status.Connected = true
			status.AccountID = credential.AccountID
			status.ExpiresAt = credential.ExpiresAt
			status.LastRefreshedAt = credential.LastRefreshedAt
			status.LastSyncedAt = credential.LastSyncedAt
		}

		statuses = append(statuses, status)
	}

	return statuses, nil
}

func (s *Service) signState(teamID string, p domain.Platform) (string, error) {
	nonce, err := utils.GenerateID()
	if err != nil {
		return "", err
	}

	claims := stateClaims{
		TeamID:   teamID,
		Platform: p.String(),
		Nonce:    nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(s.now().Add(stateTTL)),
			IssuedAt:  jwt.NewNumericDate(s.now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.StateSecret))
}

func (s *Service) verifyState(state string) (*stateClaims, error) {
	token, err := jwt.ParseWithClaims(state, &stateClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.StateSecret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*stateClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid state token")
	}

	return claims, nil
}
