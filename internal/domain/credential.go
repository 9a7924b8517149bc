package domain

import "time"

// Credential representa o vínculo OAuth de um time com uma plataforma de anúncios.
// Os tokens são segredos opacos e nunca devem aparecer em logs.
type Credential struct {
	ID              string
	TeamID          string
	Platform        Platform
	AccountID       *string // identificador da conta no lado do provedor; nulo até o primeiro link bem-sucedido
	AccessToken     string
	RefreshToken    *string // ausente em plataformas com tokens que não expiram
	ExpiresAt       *time.Time
	Scopes          []string
	IsActive        bool
	LastRefreshedAt *time.Time
	LastSyncedAt    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// HasRefreshToken indica se a credencial possui refresh token utilizável
func (c *Credential) HasRefreshToken() bool {
	return c.RefreshToken != nil && *c.RefreshToken != ""
}

// IsExpired indica se o access token já passou da data de expiração.
// Expiração desconhecida (nil) é tratada como token de longa duração.
func (c *Credential) IsExpired(now time.Time) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Before(*c.ExpiresAt)
}

// ExpiresWithin indica se o token expira dentro da margem de segurança
func (c *Credential) ExpiresWithin(now time.Time, margin time.Duration) bool {
	if c.ExpiresAt == nil {
		return false
	}
	return !now.Add(margin).Before(*c.ExpiresAt)
}

// IsRefreshableExpired indica token expirado porém renovável via refresh grant
func (c *Credential) IsRefreshableExpired(now time.Time) bool {
	return c.IsExpired(now) && c.HasRefreshToken()
}

// IsTerminalExpired indica token expirado sem refresh token: exige novo consentimento do usuário
func (c *Credential) IsTerminalExpired(now time.Time) bool {
	return c.IsExpired(now) && !c.HasRefreshToken()
}

// TokenSet é o resultado normalizado de um code exchange ou refresh grant
type TokenSet struct {
	AccessToken  string
	RefreshToken *string
	ExpiresAt    *time.Time // nulo quando o provedor não informa expiração
	Scopes       []string
	AccountID    *string // alguns provedores retornam o identificador da conta junto com o token
}
