package tokening

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/cache"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/repository"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

// nonExpiringTokenTTL limita o tempo de cache de tokens sem expiração
// declarada (ex.: Naver), forçando releitura periódica do banco
const nonExpiringTokenTTL = 1 * time.Hour

// TokenManager entrega tokens de acesso válidos para as integrações,
// renovando-os de forma transparente quando estão perto de expirar.
type TokenManager interface {
	GetValidToken(ctx context.Context, teamID string, p domain.Platform) (string, error)
	ForceRefresh(ctx context.Context, teamID string, p domain.Platform) (string, error)
	ExchangeAndStore(ctx context.Context, teamID string, p domain.Platform, code, redirectURI string) (*domain.Credential, error)
	Revoke(ctx context.Context, teamID string, p domain.Platform) error
}

type Service struct {
	credentialRepo repository.CredentialRepository
	cache          cache.Cache
	registry       *platform.Registry
	cfg            config.TokenLifecycle
	now            func() time.Time
}

func NewService(
	credentialRepo repository.CredentialRepository,
	c cache.Cache,
	registry *platform.Registry,
	cfg config.TokenLifecycle,
) *Service {
	return &Service{
		credentialRepo: credentialRepo,
		cache:          c,
		registry:       registry,
		cfg:            cfg,
		now:            time.Now,
	}
}

func tokenCacheKey(teamID string, p domain.Platform) string {
	return fmt.Sprintf("token:%s:%s", teamID, p)
}

func refreshLockKey(teamID string, p domain.Platform) string {
	return fmt.Sprintf("token:refresh-lock:%s:%s", teamID, p)
}

// GetValidToken retorna um token de acesso válido por pelo menos a margem de
// segurança configurada. A leitura é cache-first; quando o token está perto de
// expirar, um único processo executa o refresh protegido por lock distribuído
// e os demais aguardam o resultado aparecer no cache.
func (s *Service) GetValidToken(ctx context.Context, teamID string, p domain.Platform) (string, error) {
	key := tokenCacheKey(teamID, p)

	token, found, err := s.cache.Get(ctx, key)
	if err != nil {
		// Cache indisponível não derruba a operação: segue para o banco
		logrus.WithFields(logrus.Fields{
			"team_id":  teamID,
			"platform": p,
		}).WithError(err).Warn("Erro ao consultar o cache de tokens, consultando o banco")
	}
	if found {
		return token, nil
	}

	credential, err := s.credentialRepo.GetActiveCredential(teamID, p)
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", NewTokenError(ErrNotConnected, teamID, p.String(), "")
	}

	if !credential.ExpiresWithin(s.now(), s.cfg.SafetyMargin) {
		s.primeCache(ctx, key, credential)
		return credential.AccessToken, nil
	}

	return s.refreshUnderLock(ctx, teamID, p, false)
}

// ForceRefresh descarta o token em cache e força um novo refresh junto ao
// provedor. Usado quando a plataforma rejeitou um token que ainda parecia
// válido (ex.: revogação fora de banda).
func (s *Service) ForceRefresh(ctx context.Context, teamID string, p domain.Platform) (string, error) {
	if err := s.cache.Delete(ctx, tokenCacheKey(teamID, p)); err != nil {
		logrus.WithFields(logrus.Fields{
			"team_id":  teamID,
			"platform": p,
		}).WithError(err).Warn("Erro ao invalidar o token em cache antes do refresh forçado")
	}

	return s.refreshUnderLock(ctx, teamID, p, true)
}

// refreshUnderLock executa o refresh garantindo um único voo por credencial.
// Quem perde a disputa pelo lock espera o vencedor publicar o novo token no
// cache em vez de disparar um refresh concorrente. Com force, o refresh vai
// ao provedor mesmo que a credencial armazenada ainda pareça válida: o token
// foi rejeitado fora de banda e re-entregá-lo só repetiria a rejeição.
func (s *Service) refreshUnderLock(ctx context.Context, teamID string, p domain.Platform, force bool) (string, error) {
	key := tokenCacheKey(teamID, p)
	lockKey := refreshLockKey(teamID, p)

	lockToken, acquired, err := s.cache.AcquireLock(ctx, lockKey, s.cfg.RefreshLockTTL)
	if err != nil {
		return "", NewTokenError(ErrTransientRefresh, teamID, p.String(), "lock de refresh indisponível")
	}

	if !acquired {
		return s.waitForRefresh(ctx, teamID, p, key)
	}

	defer func() {
		if err := s.cache.ReleaseLock(context.WithoutCancel(ctx), lockKey, lockToken); err != nil {
			logrus.WithField("key", lockKey).WithError(err).Warn("Erro ao liberar o lock de refresh")
		}
	}()

	// Outro processo pode ter concluído o refresh entre a nossa leitura e a
	// aquisição do lock; o cache é a barreira. No refresh forçado a barreira
	// não vale: o que estiver em cache pode ser o próprio token rejeitado.
	if !force {
		token, found, err := s.cache.Get(ctx, key)
		if err == nil && found {
			return token, nil
		}
	}

	credential, err := s.credentialRepo.GetActiveCredential(teamID, p)
	if err != nil {
		return "", err
	}
	if credential == nil {
		return "", NewTokenError(ErrNotConnected, teamID, p.String(), "")
	}

	if !force && !credential.ExpiresWithin(s.now(), s.cfg.SafetyMargin) {
		s.primeCache(ctx, key, credential)
		return credential.AccessToken, nil
	}

	return s.doRefresh(ctx, key, credential)
}

func (s *Service) doRefresh(ctx context.Context, key string, credential *domain.Credential) (string, error) {
	fields := logrus.Fields{
		"team_id":  credential.TeamID,
		"platform": credential.Platform,
	}

	if !credential.HasRefreshToken() {
		logrus.WithFields(fields).Warn("Credencial expirada sem refresh token, reautorização necessária")
		return "", NewTokenError(ErrReauthRequired, credential.TeamID, credential.Platform.String(), "credencial sem refresh token")
	}

	adapter, err := s.registry.Get(credential.Platform)
	if err != nil {
		return "", err
	}

	tokens, err := adapter.Refresh(ctx, *credential.RefreshToken)
	if err != nil {
		if platform.IsInvalidGrant(err) || platform.IsAuthRejected(err) {
			logrus.WithFields(fields).WithError(err).Warn("Refresh token rejeitado pelo provedor, desativando a credencial")

			if derr := s.credentialRepo.DeactivateCredential(credential.ID); derr != nil {
				logrus.WithFields(fields).WithError(derr).Error("Erro ao desativar a credencial rejeitada")
			}
			if cerr := s.cache.Delete(ctx, key); cerr != nil {
				logrus.WithFields(fields).WithError(cerr).Warn("Erro ao limpar o token em cache da credencial rejeitada")
			}

			return "", fmt.Errorf("%w: %w", ErrReauthRequired, err)
		}

		logrus.WithFields(fields).WithError(err).Warn("Falha temporária ao renovar o token")
		return "", fmt.Errorf("%w: %w", ErrTransientRefresh, err)
	}

	if err := s.credentialRepo.UpdateTokens(credential.ID, tokens, s.now()); err != nil {
		return "", err
	}

	refreshed := &domain.Credential{
		AccessToken: tokens.AccessToken,
		ExpiresAt:   tokens.ExpiresAt,
	}
	s.primeCache(ctx, key, refreshed)

	logrus.WithFields(fields).Info("Token renovado com sucesso")

	return tokens.AccessToken, nil
}

// waitForRefresh aguarda o vencedor do lock publicar o token renovado no cache
func (s *Service) waitForRefresh(ctx context.Context, teamID string, p domain.Platform, key string) (string, error) {
	deadline := s.now().Add(s.cfg.LockWaitTimeout)

	ticker := time.NewTicker(s.cfg.LockPollEvery)
	defer ticker.Stop()

	for {
		token, found, err := s.cache.Get(ctx, key)
		if err == nil && found {
			return token, nil
		}

		if s.now().After(deadline) {
			return "", NewTokenError(ErrRefreshTimeout, teamID, p.String(), "")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

// primeCache publica o token no cache com TTL que expira junto com a margem
// de segurança, garantindo que leituras futuras nunca entreguem um token com
// menos validade que a margem
func (s *Service) primeCache(ctx context.Context, key string, credential *domain.Credential) {
	ttl := nonExpiringTokenTTL

	if credential.ExpiresAt != nil {
		ttl = credential.ExpiresAt.Sub(s.now()) - s.cfg.SafetyMargin
		if ttl <= 0 {
			return
		}
	}

	if err := s.cache.SetWithTTL(ctx, key, credential.AccessToken, ttl); err != nil {
		logrus.WithField("key", key).WithError(err).Warn("Erro ao publicar o token no cache")
	}
}

// ExchangeAndStore troca o código de autorização por tokens e grava a nova
// credencial ativa do par (time, plataforma)
func (s *Service) ExchangeAndStore(ctx context.Context, teamID string, p domain.Platform, code, redirectURI string) (*domain.Credential, error) {
	adapter, err := s.registry.Get(p)
	if err != nil {
		return nil, err
	}

	tokens, err := adapter.ExchangeCode(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	now := s.now()
	credential := &domain.Credential{
		ID:              uuid.NewString(),
		TeamID:          teamID,
		Platform:        p,
		AccountID:       tokens.AccountID,
		AccessToken:     tokens.AccessToken,
		RefreshToken:    tokens.RefreshToken,
		ExpiresAt:       tokens.ExpiresAt,
		Scopes:          tokens.Scopes,
		IsActive:        true,
		LastRefreshedAt: &now,
	}

	if err := s.credentialRepo.SaveCredential(credential); err != nil {
		return nil, err
	}

	s.primeCache(ctx, tokenCacheKey(teamID, p), credential)

	logrus.WithFields(logrus.Fields{
		"team_id":  teamID,
		"platform": p,
	}).Info("Credencial vinculada com sucesso")

	return credential, nil
}

// Revoke desativa a credencial do par (time, plataforma). A revogação junto ao
// provedor é best-effort: a desativação local acontece mesmo que o provedor
// esteja indisponível.
func (s *Service) Revoke(ctx context.Context, teamID string, p domain.Platform) error {
	credential, err := s.credentialRepo.GetActiveCredential(teamID, p)
	if err != nil {
		return err
	}
	if credential == nil {
		return NewTokenError(ErrNotConnected, teamID, p.String(), "")
	}

	adapter, err := s.registry.Get(p)
	if err != nil {
		return err
	}

	if err := adapter.Revoke(ctx, credential.AccessToken); err != nil {
		logrus.WithFields(logrus.Fields{
			"team_id":  teamID,
			"platform": p,
		}).WithError(err).Warn("Erro ao revogar o token junto ao provedor, desativando localmente")
	}

	if err := s.credentialRepo.DeactivateCredential(credential.ID); err != nil {
		return err
	}

	if err := s.cache.Delete(ctx, tokenCacheKey(teamID, p)); err != nil {
		logrus.WithFields(logrus.Fields{
			"team_id":  teamID,
			"platform": p,
		}).WithError(err).Warn("Erro ao limpar o token em cache após a desvinculação")
	}

	return nil
}
