package google

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const platformName = "google"

// Service implementa o adaptador do Google Ads sobre golang.org/x/oauth2.
// O refresh token do Google não rotaciona; o consentimento com
// access_type=offline e prompt=consent garante que ele venha na primeira troca.
type Service struct {
	cfg    config.Google
	oauth  oauth2.Config
	fetch *platform.FetchClient
}

func New(cfg config.Google) *Service {
	return &Service{
		cfg: cfg,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoints.Google,
			Scopes:       []string{"https://www.googleapis.com/auth/adwords"},
		},
		fetch: platform.NewFetchClient(60 * time.Second),
	}
}

func (s *Service) Platform() domain.Platform {
	return domain.PlatformGoogle
}

func (s *Service) BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error) {
	cfg := s.oauth
	cfg.RedirectURL = redirectURI
	if len(scopes) > 0 {
		cfg.Scopes = scopes
	}

	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	), nil
}

func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error) {
	cfg := s.oauth
	cfg.RedirectURL = redirectURI

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, normalizeOAuthError(err, platform.GrantExchange)
	}

	return toTokenSet(token), nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	source := s.oauth.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})

	token, err := source.Token()
	if err != nil {
		return nil, normalizeOAuthError(err, platform.GrantRefresh)
	}

	set := toTokenSet(token)
	if set.RefreshToken == nil {
		// Google devolve o refresh token apenas na troca inicial
		set.RefreshToken = &refreshToken
	}
	return set, nil
}

// Revoke chama o endpoint de revogação do Google. O corpo de sucesso é vazio,
// então a chamada é feita direto, sem passar pelo cliente de token
func (s *Service) Revoke(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.RevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logrus.WithFields(logrus.Fields{
			"platform": platformName,
			"status":   resp.StatusCode,
		}).Warn("Falha ao revogar token no Google")
	}
	return nil
}

// normalizeOAuthError converte erros do x/oauth2 para a taxonomia dos adaptadores
func normalizeOAuthError(err error, kind platform.GrantKind) error {
	var retrieveErr *oauth2.RetrieveError
	if !errors.As(err, &retrieveErr) {
		return &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}

	status := 0
	if retrieveErr.Response != nil {
		status = retrieveErr.Response.StatusCode
	}

	switch {
	case status == http.StatusTooManyRequests:
		retryAfter := time.Duration(0)
		if retrieveErr.Response != nil {
			retryAfter = platform.ParseRetryAfter(retrieveErr.Response.Header.Get("Retry-After"))
		}
		return &platform.RateLimitedError{Platform: platformName, RetryAfter: retryAfter}

	case status >= http.StatusInternalServerError:
		return &platform.ProviderUnavailableError{Platform: platformName, Cause: err}
	}

	reason := retrieveErr.ErrorCode
	if retrieveErr.ErrorDescription != "" {
		reason += ": " + retrieveErr.ErrorDescription
	}
	if reason == "" {
		reason = err.Error()
	}

	if kind == platform.GrantRefresh {
		return &platform.InvalidGrantError{Platform: platformName, Reason: reason}
	}
	return &platform.AuthExchangeError{Platform: platformName, Reason: reason}
}

func toTokenSet(token *oauth2.Token) *domain.TokenSet {
	set := &domain.TokenSet{
		AccessToken: token.AccessToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		set.ExpiresAt = &expiry
	}
	if token.RefreshToken != "" {
		refresh := token.RefreshToken
		set.RefreshToken = &refresh
	}
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		set.Scopes = strings.Split(scope, " ")
	}
	return set
}

// campaignReport é a resposta paginada do relatório diário de campanhas
type campaignReport struct {
	Results []struct {
		Campaign struct {
			ID     string `json:"id"`
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"campaign"`
		Segments struct {
			Date string `json:"date"`
		} `json:"segments"`
		Metrics struct {
			Impressions     int64   `json:"impressions,string"`
			Clicks          int64   `json:"clicks,string"`
			CostMicros      int64   `json:"costMicros,string"`
			Conversions     float64 `json:"conversions"`
			ConversionValue float64 `json:"conversionsValue"`
		} `json:"metrics"`
	} `json:"results"`
	NextPageToken string `json:"nextPageToken"`
}

type campaignPager struct {
	svc         *Service
	accessToken string
	customerID  string
	window      domain.SyncWindow
	pageToken   string
}

func (s *Service) FetchCampaigns(accessToken, externalAccountID string, window domain.SyncWindow) platform.CampaignPager {
	return &campaignPager{
		svc:         s,
		accessToken: accessToken,
		customerID:  externalAccountID,
		window:      window,
	}
}

func (p *campaignPager) Next(ctx context.Context) ([]domain.CampaignMetricRecord, bool, error) {
	params := url.Values{}
	params.Set("startDate", p.window.Start.Format(time.DateOnly))
	params.Set("endDate", p.window.End.Format(time.DateOnly))
	params.Set("pageSize", "500")
	if p.pageToken != "" {
		params.Set("pageToken", p.pageToken)
	}

	requestURL := p.svc.cfg.APIURL + "/customers/" + p.customerID + "/campaignReports?" + params.Encode()
	headers := map[string]string{"Authorization": "Bearer " + p.accessToken}

	var resp campaignReport
	if err := p.svc.fetch.GetJSON(ctx, platformName, requestURL, headers, &resp); err != nil {
		return nil, true, err
	}

	records := make([]domain.CampaignMetricRecord, 0, len(resp.Results))
	for _, row := range resp.Results {
		date, err := time.Parse(time.DateOnly, row.Segments.Date)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"platform":    platformName,
				"campaign_id": row.Campaign.ID,
				"date":        row.Segments.Date,
			}).Warn("Data de métrica fora do formato esperado, pulando registro")
			continue
		}

		records = append(records, domain.CampaignMetricRecord{
			Platform:           domain.PlatformGoogle,
			PlatformCampaignID: row.Campaign.ID,
			ExternalAccountID:  p.customerID,
			Date:               date,
			Name:               row.Campaign.Name,
			Status:             row.Campaign.Status,
			Impressions:        row.Metrics.Impressions,
			Clicks:             row.Metrics.Clicks,
			Spend:              float64(row.Metrics.CostMicros) / 1e6,
			Conversions:        int64(row.Metrics.Conversions),
			Revenue:            row.Metrics.ConversionValue,
		})
	}

	p.pageToken = resp.NextPageToken

	return records, resp.NextPageToken != "", nil
}
