package tiktok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const platformName = "tiktok"

// Códigos de erro da Business API relevantes para a normalização
const (
	codeOK               = 0
	codeAuthCodeInvalid  = 40110
	codeRefreshExpired   = 40111
	codeAccessInvalid    = 40105
	codeRateLimitReached = 40100
)

// Service implementa o adaptador do TikTok for Business.
// Peculiaridades do dialeto: o endpoint de token recebe JSON (não form),
// toda resposta vem num envelope {code, message, data} com HTTP 200, e o
// refresh token rotaciona a cada renovação, invalidando o anterior.
type Service struct {
	cfg        config.TikTok
	httpClient *http.Client
	fetch      *platform.FetchClient
}

func New(cfg config.TikTok) *Service {
	return &Service{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		fetch:      platform.NewFetchClient(60 * time.Second),
	}
}

func (s *Service) Platform() domain.Platform {
	return domain.PlatformTikTok
}

func (s *Service) BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error) {
	params := url.Values{}
	params.Set("app_id", s.cfg.AppID)
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)

	return s.cfg.AuthURL + "?" + params.Encode(), nil
}

// envelope é o contêiner padrão das respostas da Business API
type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type tokenData struct {
	AccessToken   string   `json:"access_token"`
	RefreshToken  string   `json:"refresh_token"`
	ExpiresIn     int64    `json:"expires_in"`
	Scope         []int64  `json:"scope"`
	AdvertiserIDs []string `json:"advertiser_ids"`
}

func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error) {
	payload := map[string]string{
		"app_id":    s.cfg.AppID,
		"secret":    s.cfg.Secret,
		"auth_code": code,
	}

	data, err := s.postJSON(ctx, s.cfg.BaseURL+"/oauth2/access_token/", payload, platform.GrantExchange)
	if err != nil {
		return nil, err
	}

	return s.toTokenSet(data), nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	payload := map[string]string{
		"app_id":        s.cfg.AppID,
		"secret":        s.cfg.Secret,
		"refresh_token": refreshToken,
	}

	data, err := s.postJSON(ctx, s.cfg.BaseURL+"/oauth2/refresh_token/", payload, platform.GrantRefresh)
	if err != nil {
		return nil, err
	}

	return s.toTokenSet(data), nil
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	payload := map[string]string{
		"app_id":       s.cfg.AppID,
		"secret":       s.cfg.Secret,
		"access_token": token,
	}

	_, err := s.postJSON(ctx, s.cfg.BaseURL+"/oauth2/revoke/", payload, platform.GrantRefresh)
	if err != nil {
		logrus.WithError(err).WithField("platform", platformName).Warn("Falha ao revogar token no TikTok")
		return err
	}
	return nil
}

func (s *Service) toTokenSet(data *tokenData) *domain.TokenSet {
	set := &domain.TokenSet{
		AccessToken: data.AccessToken,
		ExpiresAt:   platform.ExpiryFromSeconds(data.ExpiresIn),
	}
	if data.RefreshToken != "" {
		set.RefreshToken = &data.RefreshToken
	}
	if len(data.AdvertiserIDs) > 0 {
		advertiserID := data.AdvertiserIDs[0]
		set.AccountID = &advertiserID
	}
	return set
}

func (s *Service) postJSON(ctx context.Context, endpoint string, payload map[string]string, kind platform.GrantKind) (*tokenData, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("endpoint respondeu status %d", resp.StatusCode)}
	}

	var env envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("erro ao decodificar envelope: %w", err)}
	}

	// A Business API devolve HTTP 200 com o erro dentro do envelope
	if env.Code != codeOK {
		return nil, s.normalizeEnvelopeError(env, kind)
	}

	var data tokenData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("erro ao decodificar dados do token: %w", err)}
	}

	if data.AccessToken == "" {
		return nil, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("access token vazio na resposta")}
	}

	return &data, nil
}

func (s *Service) normalizeEnvelopeError(env envelope, kind platform.GrantKind) error {
	switch env.Code {
	case codeRateLimitReached:
		return &platform.RateLimitedError{Platform: platformName}
	case codeRefreshExpired, codeAccessInvalid:
		if kind == platform.GrantRefresh {
			return &platform.InvalidGrantError{Platform: platformName, Reason: env.Message}
		}
		return &platform.AuthExchangeError{Platform: platformName, Reason: env.Message}
	case codeAuthCodeInvalid:
		return &platform.AuthExchangeError{Platform: platformName, Reason: env.Message}
	}

	if kind == platform.GrantRefresh {
		return &platform.InvalidGrantError{Platform: platformName, Reason: fmt.Sprintf("código %d: %s", env.Code, env.Message)}
	}
	return &platform.AuthExchangeError{Platform: platformName, Reason: fmt.Sprintf("código %d: %s", env.Code, env.Message)}
}

// reportPage é o payload de dados do relatório integrado
type reportPage struct {
	List []struct {
		Dimensions struct {
			CampaignID string `json:"campaign_id"`
			StatDate   string `json:"stat_time_day"`
		} `json:"dimensions"`
		Metrics struct {
			CampaignName string `json:"campaign_name"`
			Impressions  string `json:"impressions"`
			Clicks       string `json:"clicks"`
			Spend        string `json:"spend"`
			Conversions  string `json:"conversion"`
			Revenue      string `json:"total_purchase_value"`
		} `json:"metrics"`
	} `json:"list"`
	PageInfo struct {
		Page        int `json:"page"`
		TotalPage   int `json:"total_page"`
		TotalNumber int `json:"total_number"`
	} `json:"page_info"`
}

type campaignPager struct {
	svc          *Service
	accessToken  string
	advertiserID string
	window       domain.SyncWindow
	page         int
}

func (s *Service) FetchCampaigns(accessToken, externalAccountID string, window domain.SyncWindow) platform.CampaignPager {
	return &campaignPager{
		svc:          s,
		accessToken:  accessToken,
		advertiserID: externalAccountID,
		window:       window,
		page:         1,
	}
}

func (p *campaignPager) Next(ctx context.Context) ([]domain.CampaignMetricRecord, bool, error) {
	params := url.Values{}
	params.Set("advertiser_id", p.advertiserID)
	params.Set("report_type", "BASIC")
	params.Set("data_level", "AUCTION_CAMPAIGN")
	params.Set("dimensions", `["campaign_id","stat_time_day"]`)
	params.Set("start_date", p.window.Start.Format(time.DateOnly))
	params.Set("end_date", p.window.End.Format(time.DateOnly))
	params.Set("page", fmt.Sprintf("%d", p.page))
	params.Set("page_size", "200")

	requestURL := p.svc.cfg.BaseURL + "/report/integrated/get/?" + params.Encode()
	headers := map[string]string{"Access-Token": p.accessToken}

	var env envelope
	if err := p.svc.fetch.GetJSON(ctx, platformName, requestURL, headers, &env); err != nil {
		return nil, true, err
	}

	// Erros de autenticação e rate limit chegam com HTTP 200 no envelope
	if env.Code != codeOK {
		switch env.Code {
		case codeAccessInvalid:
			return nil, true, &platform.AuthRejectedError{Platform: platformName, Reason: env.Message}
		case codeRateLimitReached:
			return nil, true, &platform.RateLimitedError{Platform: platformName}
		default:
			return nil, true, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("código %d: %s", env.Code, env.Message)}
		}
	}

	var pageData reportPage
	if err := json.Unmarshal(env.Data, &pageData); err != nil {
		return nil, true, &platform.ProviderUnavailableError{Platform: platformName, Cause: fmt.Errorf("erro ao decodificar relatório: %w", err)}
	}

	records := make([]domain.CampaignMetricRecord, 0, len(pageData.List))
	for _, row := range pageData.List {
		date, err := time.Parse("2006-01-02 15:04:05", row.Dimensions.StatDate)
		if err != nil {
			if date, err = time.Parse(time.DateOnly, row.Dimensions.StatDate); err != nil {
				logrus.WithFields(logrus.Fields{
					"platform":    platformName,
					"campaign_id": row.Dimensions.CampaignID,
					"stat_date":   row.Dimensions.StatDate,
				}).Warn("Data de métrica fora do formato esperado, pulando registro")
				continue
			}
		}

		records = append(records, domain.CampaignMetricRecord{
			Platform:           domain.PlatformTikTok,
			PlatformCampaignID: row.Dimensions.CampaignID,
			ExternalAccountID:  p.advertiserID,
			Date:               date,
			Name:               row.Metrics.CampaignName,
			Impressions:        parseInt(row.Metrics.Impressions),
			Clicks:             parseInt(row.Metrics.Clicks),
			Spend:              parseFloat(row.Metrics.Spend),
			Conversions:        parseInt(row.Metrics.Conversions),
			Revenue:            parseFloat(row.Metrics.Revenue),
		})
	}

	hasMore := p.page < pageData.PageInfo.TotalPage
	p.page++

	return records, hasMore, nil
}

// A Business API devolve métricas numéricas como strings
func parseInt(s string) int64 {
	var v int64
	fmt.Sscanf(s, "%d", &v)
	return v
}

func parseFloat(s string) float64 {
	var v float64
	fmt.Sscanf(s, "%f", &v)
	return v
}
