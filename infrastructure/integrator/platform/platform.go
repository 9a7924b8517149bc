package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

// Adapter encapsula o dialeto OAuth e a API de relatórios de uma plataforma
// de anúncios. Cada provedor implementa a interface uma vez; peculiaridades
// (tokens que não expiram, refresh tokens rotativos, sinalização de rate limit
// diferente) ficam isoladas dentro do adaptador correspondente.
type Adapter interface {
	// Platform identifica a plataforma deste adaptador
	Platform() domain.Platform

	// BuildAuthorizationURL monta a URL de consentimento do provedor.
	// Retorna ErrAuthorizationNotSupported para plataformas sem fluxo OAuth.
	BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error)

	// ExchangeCode troca o código de autorização por um conjunto de tokens.
	// Falha com AuthExchangeError (código inválido/expirado) ou
	// ProviderUnavailableError (rede/5xx).
	ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error)

	// Refresh executa o refresh grant. Falha com InvalidGrantError (terminal)
	// ou ProviderUnavailableError (transitório).
	Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error)

	// Revoke invalida o token junto ao provedor. Melhor esforço: falhas são
	// logadas pelo chamador, nunca propagadas como fatais.
	Revoke(ctx context.Context, token string) error

	// FetchCampaigns retorna um paginador preguiçoso sobre as campanhas e
	// métricas da conta na janela informada. Erros possíveis por página:
	// RateLimitedError, AuthRejectedError, ProviderUnavailableError.
	FetchCampaigns(accessToken, externalAccountID string, window domain.SyncWindow) CampaignPager
}

// CampaignPager itera sobre páginas de campanhas sem acumular tudo em memória.
// Next retorna os registros da página corrente e se ainda há páginas. O cursor
// de retomada fica dentro do paginador, então uma página com erro pode ser
// tentada de novo chamando Next outra vez.
type CampaignPager interface {
	Next(ctx context.Context) (records []domain.CampaignMetricRecord, hasMore bool, err error)
}

// Registry resolve o adaptador de cada plataforma. Construído explicitamente
// na inicialização do processo e injetado nos serviços, sem registro global.
type Registry struct {
	adapters map[domain.Platform]Adapter
}

func NewRegistry(adapters ...Adapter) *Registry {
	m := make(map[domain.Platform]Adapter, len(adapters))
	for _, a := range adapters {
		m[a.Platform()] = a
	}
	return &Registry{adapters: m}
}

// Get retorna o adaptador da plataforma registrada
func (r *Registry) Get(p domain.Platform) (Adapter, error) {
	adapter, ok := r.adapters[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAdapterNotRegistered, p)
	}
	return adapter, nil
}

// Platforms lista as plataformas com adaptador registrado
func (r *Registry) Platforms() []domain.Platform {
	ps := make([]domain.Platform, 0, len(r.adapters))
	for p := range r.adapters {
		ps = append(ps, p)
	}
	return ps
}

// ExpiryFromSeconds converte um expires_in relativo em timestamp absoluto.
// Zero ou negativo significa que o provedor não informou expiração.
func ExpiryFromSeconds(expiresIn int64) *time.Time {
	if expiresIn <= 0 {
		return nil
	}
	t := time.Now().Add(time.Duration(expiresIn) * time.Second)
	return &t
}
