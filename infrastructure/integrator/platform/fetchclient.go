package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// FetchClient é o cliente HTTP compartilhado para as chamadas de dados
// (relatórios de campanha). A normalização difere do endpoint de token:
// 401/403 durante uma busca significa access token rejeitado no meio do
// caminho, o que sinaliza ao chamador um refresh forçado seguido de uma
// única nova tentativa.
type FetchClient struct {
	httpClient *http.Client
}

func NewFetchClient(timeout time.Duration) *FetchClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &FetchClient{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// GetJSON faz um GET autenticado e decodifica a resposta em out
func (c *FetchClient) GetJSON(ctx context.Context, p, requestURL string, headers map[string]string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return &ProviderUnavailableError{Platform: p, Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &ProviderUnavailableError{Platform: p, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ProviderUnavailableError{Platform: p, Cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(body, out); err != nil {
			return &ProviderUnavailableError{Platform: p, Cause: fmt.Errorf("erro ao decodificar resposta de dados: %w", err)}
		}
		return nil

	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthRejectedError{Platform: p, Reason: truncateBody(body)}

	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitedError{Platform: p, RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"))}

	default:
		return &ProviderUnavailableError{Platform: p, Cause: fmt.Errorf("status inesperado %d: %s", resp.StatusCode, truncateBody(body))}
	}
}

// truncateBody limita o corpo registrado em mensagens de erro
func truncateBody(body []byte) string {
	const max = 256
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
