package tokening

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected indica que o time não possui credencial ativa para a plataforma
	ErrNotConnected = errors.New("plataforma não conectada para este time")

	// ErrReauthRequired indica que o refresh token foi rejeitado ou não existe;
	// o usuário precisa refazer a autorização na plataforma
	ErrReauthRequired = errors.New("reautorização necessária na plataforma")

	// ErrTransientRefresh indica uma falha temporária do provedor durante o
	// refresh; a operação pode ser repetida mais tarde
	ErrTransientRefresh = errors.New("falha temporária ao renovar o token")

	// ErrRefreshTimeout indica que outro processo detinha o lock de refresh e o
	// resultado não apareceu no cache dentro do tempo de espera
	ErrRefreshTimeout = errors.New("tempo de espera pelo refresh excedido")
)

// TokenError carrega o contexto da falha sem nunca expor o valor dos tokens
type TokenError struct {
	Err      error
	TeamID   string
	Platform string
	Details  string
}

func (e *TokenError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Details)
	}
	return e.Err.Error()
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

func NewTokenError(baseErr error, teamID, platform, details string) *TokenError {
	return &TokenError{
		Err:      baseErr,
		TeamID:   teamID,
		Platform: platform,
		Details:  details,
	}
}

// IsReauthRequired verifica se o erro exige nova autorização do usuário
func IsReauthRequired(err error) bool {
	return errors.Is(err, ErrReauthRequired) || errors.Is(err, ErrNotConnected)
}
