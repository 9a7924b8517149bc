package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// GrantKind distingue a troca de código do refresh grant na hora de
// normalizar erros 4xx: um "invalid_grant" na troca vira AuthExchangeError,
// no refresh vira InvalidGrantError (terminal).
type GrantKind int

const (
	GrantExchange GrantKind = iota
	GrantRefresh
)

// oauthErrorBody é o corpo de erro padrão dos endpoints de token OAuth2
type oauthErrorBody struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	// Kakao e Naver usam variantes próprias
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (b oauthErrorBody) describe() string {
	switch {
	case b.ErrorDescription != "":
		return fmt.Sprintf("%s: %s", b.Error, b.ErrorDescription)
	case b.ErrorMessage != "":
		return fmt.Sprintf("%s: %s", b.ErrorCode, b.ErrorMessage)
	case b.Error != "":
		return b.Error
	}
	return "resposta de erro sem detalhes"
}

// TokenClient é o cliente HTTP compartilhado pelos adaptadores para chamar
// endpoints de token, já aplicando timeout por chamada e a normalização de
// erros da taxonomia.
type TokenClient struct {
	httpClient *http.Client
}

func NewTokenClient(timeout time.Duration) *TokenClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TokenClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// TokenEndpointResponse é a resposta bruta de um endpoint de token.
// Campos extras cobrem variantes de provedores (open_id do TikTok, etc.)
type TokenEndpointResponse struct {
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	TokenType        string `json:"token_type"`
	ExpiresIn        int64  `json:"expires_in"`
	Scope            string `json:"scope"`
	OpenID           string `json:"open_id"`
	AdvertiserID     string `json:"advertiser_id"`
	RefreshExpiresIn int64  `json:"refresh_token_expires_in"`
}

// PostForm envia um POST application/x-www-form-urlencoded ao endpoint de
// token e normaliza a resposta
func (c *TokenClient) PostForm(ctx context.Context, p, endpoint string, form url.Values, kind GrantKind) (*TokenEndpointResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ProviderUnavailableError{Platform: p, Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ProviderUnavailableError{Platform: p, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderUnavailableError{Platform: p, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.normalizeTokenError(p, resp, body, kind)
	}

	var tokenResp TokenEndpointResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &ProviderUnavailableError{Platform: p, Cause: fmt.Errorf("erro ao decodificar resposta do endpoint de token: %w", err)}
	}

	if tokenResp.AccessToken == "" {
		return nil, &ProviderUnavailableError{Platform: p, Cause: fmt.Errorf("endpoint de token retornou access token vazio")}
	}

	return &tokenResp, nil
}

// normalizeTokenError converte status HTTP e corpo de erro OAuth para a taxonomia
func (c *TokenClient) normalizeTokenError(p string, resp *http.Response, body []byte, kind GrantKind) error {
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitedError{Platform: p, RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"))}

	case resp.StatusCode >= http.StatusInternalServerError:
		return &ProviderUnavailableError{Platform: p, Cause: fmt.Errorf("endpoint de token respondeu status %d", resp.StatusCode)}
	}

	var errBody oauthErrorBody
	// Corpo fora do padrão não interrompe a normalização: classificamos pelo status
	if err := json.Unmarshal(body, &errBody); err != nil {
		logrus.WithFields(logrus.Fields{
			"platform": p,
			"status":   resp.StatusCode,
		}).Warn("Corpo de erro do endpoint de token fora do formato esperado")
	}

	reason := errBody.describe()

	if kind == GrantRefresh {
		return &InvalidGrantError{Platform: p, Reason: reason}
	}
	return &AuthExchangeError{Platform: p, Reason: reason}
}

// ParseRetryAfter interpreta o header Retry-After (segundos ou data HTTP)
func ParseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
