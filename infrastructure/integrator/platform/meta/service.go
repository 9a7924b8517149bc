package meta

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

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const platformName = "facebook"

// Service implementa o adaptador do Meta (Facebook Ads).
// O dialeto do Graph não tem refresh grant: a troca de código gera um token
// de curta duração que é imediatamente trocado por um de longa duração
// (~60 dias), e a "renovação" é uma nova troca fb_exchange_token usando o
// token de longa duração corrente. Por isso o token de longa duração também é
// armazenado como refresh token da credencial.
type Service struct {
	cfg        config.Facebook
	httpClient *http.Client
	fetch      *platform.FetchClient
}

func New(cfg config.Facebook) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		fetch:      platform.NewFetchClient(60 * time.Second),
	}
}

func (s *Service) Platform() domain.Platform {
	return domain.PlatformFacebook
}

func (s *Service) BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error) {
	if len(scopes) == 0 {
		scopes = []string{"ads_read", "ads_management"}
	}

	params := url.Values{}
	params.Set("client_id", s.cfg.AppID)
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)
	params.Set("response_type", "code")
	params.Set("scope", strings.Join(scopes, ","))

	return fmt.Sprintf("https://www.facebook.com/%s/dialog/oauth?%s", s.cfg.Version, params.Encode()), nil
}

func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error) {
	// Primeiro passo: código -> token de curta duração
	params := url.Values{}
	params.Set("client_id", s.cfg.AppID)
	params.Set("client_secret", s.cfg.AppSecret)
	params.Set("redirect_uri", redirectURI)
	params.Set("code", code)

	shortLived, err := s.callTokenEndpoint(ctx, params, platform.GrantExchange)
	if err != nil {
		return nil, err
	}

	// Segundo passo: token de curta duração -> longa duração (~60 dias)
	return s.exchangeLongLived(ctx, shortLived.AccessToken, platform.GrantExchange)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	return s.exchangeLongLived(ctx, refreshToken, platform.GrantRefresh)
}

func (s *Service) exchangeLongLived(ctx context.Context, token string, kind platform.GrantKind) (*domain.TokenSet, error) {
	params := url.Values{}
	params.Set("grant_type", "fb_exchange_token")
	params.Set("client_id", s.cfg.AppID)
	params.Set("client_secret", s.cfg.AppSecret)
	params.Set("fb_exchange_token", token)

	resp, err := s.callTokenEndpoint(ctx, params, kind)
	if err != nil {
		return nil, err
	}

	// O token de longa duração faz o papel de refresh token na próxima renovação
	longLived := resp.AccessToken
	return &domain.TokenSet{
		AccessToken:  longLived,
		RefreshToken: &longLived,
		ExpiresAt:    platform.ExpiryFromSeconds(resp.ExpiresIn),
	}, nil
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	requestURL := fmt.Sprintf("%s/me/permissions?access_token=%s", s.cfg.URL, url.QueryEscape(token))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, requestURL, nil)
	if err != nil {
		return &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		logrus.WithFields(logrus.Fields{
			"platform": platformName,
			"status":   resp.StatusCode,
		}).Warn("Falha ao revogar permissões no Meta")
		return &platform.ProviderUnavailableError{
			Platform: platformName,
			Cause:    fmt.Errorf("revogação respondeu status %d: %s", resp.StatusCode, string(body)),
		}
	}
	return nil
}

// tokenResponse representa a resposta do Graph ao trocar um token
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// errorResponse é a estrutura de erro da API do Meta
type errorResponse struct {
	Error struct {
		Message      string `json:"message"`
		Type         string `json:"type"`
		Code         int    `json:"code"`
		ErrorSubcode int    `json:"error_subcode,omitempty"`
		FBTraceID    string `json:"fbtrace_id"`
	} `json:"error"`
}

// isTokenInvalid verifica se o erro indica token expirado ou invalidado.
// O código 190 representa "token expirado"; subcódigos 460/463/467 cobrem
// sessão invalidada e senha alterada.
func (e *errorResponse) isTokenInvalid() bool {
	return e.Error.Code == 190 ||
		(e.Error.Type == "OAuthException" &&
			(e.Error.ErrorSubcode == 460 || e.Error.ErrorSubcode == 463 || e.Error.ErrorSubcode == 467))
}

// isRateLimited verifica os códigos de limitação de chamadas do Graph (4, 17, 32)
func (e *errorResponse) isRateLimited() bool {
	return e.Error.Code == 4 || e.Error.Code == 17 || e.Error.Code == 32
}

func (s *Service) callTokenEndpoint(ctx context.Context, params url.Values, kind platform.GrantKind) (*tokenResponse, error) {
	endpoint := fmt.Sprintf("%s/oauth/access_token?%s", s.cfg.URL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, s.normalizeError(resp.StatusCode, body, kind)
	}

	var tokenResp tokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("erro ao decodificar resposta: %w", err)}
	}

	if tokenResp.AccessToken == "" {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("token retornado pela API é vazio")}
	}

	return &tokenResp, nil
}

func (s *Service) normalizeError(status int, body []byte, kind platform.GrantKind) error {
	if status >= http.StatusInternalServerError {
		return &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("endpoint de token respondeu status %d", status)}
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		switch {
		case errResp.isRateLimited():
			return &platform.RateLimitedError{Platform: platformName}
		case errResp.isTokenInvalid() && kind == platform.GrantRefresh:
			return &platform.InvalidGrantError{Platform: platformName, Reason: errResp.Error.Message}
		}
		if kind == platform.GrantRefresh {
			return &platform.InvalidGrantError{Platform: platformName, Reason: errResp.Error.Message}
		}
		return &platform.AuthExchangeError{Platform: platformName, Reason: errResp.Error.Message}
	}

	if kind == platform.GrantRefresh {
		return &platform.InvalidGrantError{Platform: platformName, Reason: fmt.Sprintf("status %d", status)}
	}
	return &platform.AuthExchangeError{Platform: platformName, Reason: fmt.Sprintf("status %d", status)}
}

// insightsPage é a resposta paginada de insights diários por campanha
type insightsPage struct {
	Data []struct {
		CampaignID   string `json:"campaign_id"`
		CampaignName string `json:"campaign_name"`
		DateStart    string `json:"date_start"`
		Impressions  string `json:"impressions"`
		Clicks       string `json:"clicks"`
		Spend        string `json:"spend"`
		Actions      []struct {
			ActionType string `json:"action_type"`
			Value      string `json:"value"`
		} `json:"actions"`
		ActionValues []struct {
			ActionType string `json:"action_type"`
			Value      string `json:"value"`
		} `json:"action_values"`
	} `json:"data"`
	Paging struct {
		Cursors struct {
			After string `json:"after"`
		} `json:"cursors"`
		Next string `json:"next"`
	} `json:"paging"`
}

type campaignPager struct {
	svc         *Service
	accessToken string
	accountID   string
	window      domain.SyncWindow
	after       string
}

func (s *Service) FetchCampaigns(accessToken, externalAccountID string, window domain.SyncWindow) platform.CampaignPager {
	return &campaignPager{
		svc:         s,
		accessToken: accessToken,
		accountID:   externalAccountID,
		window:      window,
	}
}

func (p *campaignPager) Next(ctx context.Context) ([]domain.CampaignMetricRecord, bool, error) {
	timeRange := fmt.Sprintf(`{"since":"%s","until":"%s"}`,
		p.window.Start.Format(time.DateOnly), p.window.End.Format(time.DateOnly))

	params := url.Values{}
	params.Set("level", "campaign")
	params.Set("fields", "campaign_id,campaign_name,impressions,clicks,spend,actions,action_values,date_start")
	params.Set("time_range", timeRange)
	params.Set("time_increment", "1")
	params.Set("limit", "100")
	params.Set("access_token", p.accessToken)
	if p.after != "" {
		params.Set("after", p.after)
	}

	requestURL := fmt.Sprintf("%s/act_%s/insights?%s", p.svc.cfg.URL, p.accountID, params.Encode())

	var resp insightsPage
	if err := p.svc.fetch.GetJSON(ctx, platformName, requestURL, nil, &resp); err != nil {
		return nil, true, err
	}

	records := make([]domain.CampaignMetricRecord, 0, len(resp.Data))
	for _, row := range resp.Data {
		date, err := time.Parse(time.DateOnly, row.DateStart)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"platform":    platformName,
				"campaign_id": row.CampaignID,
				"date_start":  row.DateStart,
			}).Warn("Data de métrica fora do formato esperado, pulando registro")
			continue
		}

		record := domain.CampaignMetricRecord{
			Platform:           domain.PlatformFacebook,
			PlatformCampaignID: row.CampaignID,
			ExternalAccountID:  p.accountID,
			Date:               date,
			Name:               row.CampaignName,
			Impressions:        parseInt(row.Impressions),
			Clicks:             parseInt(row.Clicks),
			Spend:              parseFloat(row.Spend),
		}

		for _, action := range row.Actions {
			if action.ActionType == "purchase" {
				record.Conversions = parseInt(action.Value)
			}
		}
		for _, value := range row.ActionValues {
			if value.ActionType == "purchase" {
				record.Revenue = parseFloat(value.Value)
			}
		}

		records = append(records, record)
	}

	p.after = resp.Paging.Cursors.After
	hasMore := resp.Paging.Next != ""

	return records, hasMore, nil
}

// O Graph devolve métricas numéricas como strings
func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

func parseFloat(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}
