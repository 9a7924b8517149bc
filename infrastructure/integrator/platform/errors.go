package platform

import (
	"errors"
	"fmt"
	"time"
)

// Taxonomia de erros dos adaptadores. Todo erro específico de provedor é
// normalizado para um destes tipos antes de cruzar a fronteira do adaptador.
// Nenhum erro de provedor vaza para o gerenciador de tokens ou o agendador.

// AuthExchangeError indica código de autorização inválido ou expirado.
// O usuário precisa reiniciar o fluxo de consentimento.
type AuthExchangeError struct {
	Platform string
	Reason   string
}

func (e *AuthExchangeError) Error() string {
	return fmt.Sprintf("falha na troca do código de autorização (%s): %s", e.Platform, e.Reason)
}

// InvalidGrantError indica refresh token revogado ou expirado.
// Erro terminal: exige nova autorização do usuário, nunca é retentado.
type InvalidGrantError struct {
	Platform string
	Reason   string
}

func (e *InvalidGrantError) Error() string {
	return fmt.Sprintf("refresh token inválido ou revogado (%s): %s", e.Platform, e.Reason)
}

// ProviderUnavailableError indica falha de rede ou 5xx do provedor.
// Erro transitório: elegível para retry com backoff.
type ProviderUnavailableError struct {
	Platform string
	Cause    error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provedor indisponível (%s): %v", e.Platform, e.Cause)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Cause
}

// RateLimitedError indica que o provedor limitou a taxa de requisições.
// RetryAfter carrega a dica do provedor; zero significa sem dica.
type RateLimitedError struct {
	Platform   string
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("limite de requisições excedido (%s), aguardar %s", e.Platform, e.RetryAfter)
	}
	return fmt.Sprintf("limite de requisições excedido (%s)", e.Platform)
}

// AuthRejectedError indica access token rejeitado no meio de uma chamada de
// dados. Sinaliza ao chamador que force um refresh e tente a busca uma única vez.
type AuthRejectedError struct {
	Platform string
	Reason   string
}

func (e *AuthRejectedError) Error() string {
	return fmt.Sprintf("access token rejeitado pelo provedor (%s): %s", e.Platform, e.Reason)
}

// ErrAuthorizationNotSupported é retornado por plataformas que não usam fluxo
// de autorização OAuth (ex.: Coupang, vinculada por chaves de API)
var ErrAuthorizationNotSupported = errors.New("plataforma não suporta fluxo de autorização OAuth")

// ErrAdapterNotRegistered indica plataforma sem adaptador no registro
var ErrAdapterNotRegistered = errors.New("plataforma sem adaptador registrado")

// IsInvalidGrant reporta se o erro é (ou envolve) um InvalidGrantError
func IsInvalidGrant(err error) bool {
	var target *InvalidGrantError
	return errors.As(err, &target)
}

// IsProviderUnavailable reporta se o erro é transitório
func IsProviderUnavailable(err error) bool {
	var target *ProviderUnavailableError
	return errors.As(err, &target)
}

// IsAuthRejected reporta se o access token foi rejeitado durante uma busca
func IsAuthRejected(err error) bool {
	var target *AuthRejectedError
	return errors.As(err, &target)
}

// AsRateLimited extrai um RateLimitedError do encadeamento, se houver
func AsRateLimited(err error) (*RateLimitedError, bool) {
	var target *RateLimitedError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
