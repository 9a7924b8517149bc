package naver

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const platformName = "naver"

// Service implementa o adaptador do Naver SearchAd.
// Peculiaridade do dialeto: o endpoint de token não informa expires_in.
// Tratamos o access token como não-expirante até que uma busca falhe com
// AuthRejected, que é o sinal de renovação.
type Service struct {
	cfg    config.Naver
	tokens *platform.TokenClient
	fetch  *platform.FetchClient
}

func New(cfg config.Naver) *Service {
	return &Service{
		cfg:    cfg,
		tokens: platform.NewTokenClient(30 * time.Second),
		fetch:  platform.NewFetchClient(60 * time.Second),
	}
}

func (s *Service) Platform() domain.Platform {
	return domain.PlatformNaver
}

func (s *Service) BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error) {
	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("state", state)

	return s.cfg.AuthURL + "?" + params.Encode(), nil
}

func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("code", code)
	form.Set("state", "")
	form.Set("redirect_uri", redirectURI)

	resp, err := s.tokens.PostForm(ctx, platformName, s.cfg.TokenURL, form, platform.GrantExchange)
	if err != nil {
		return nil, err
	}

	return toTokenSet(resp), nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("refresh_token", refreshToken)

	resp, err := s.tokens.PostForm(ctx, platformName, s.cfg.TokenURL, form, platform.GrantRefresh)
	if err != nil {
		return nil, err
	}

	return toTokenSet(resp), nil
}

func (s *Service) Revoke(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("grant_type", "delete")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("access_token", token)
	form.Set("service_provider", "NAVER")

	_, err := s.tokens.PostForm(ctx, platformName, s.cfg.TokenURL, form, platform.GrantRefresh)
	if err != nil {
		// Revogação é melhor esforço
		logrus.WithError(err).WithField("platform", platformName).Warn("Falha ao revogar token no Naver")
		return err
	}
	return nil
}

func toTokenSet(resp *platform.TokenEndpointResponse) *domain.TokenSet {
	set := &domain.TokenSet{
		AccessToken: resp.AccessToken,
		// Naver não informa expires_in: expiração desconhecida fica nula
		ExpiresAt: platform.ExpiryFromSeconds(resp.ExpiresIn),
	}
	if resp.RefreshToken != "" {
		set.RefreshToken = &resp.RefreshToken
	}
	if resp.Scope != "" {
		set.Scopes = strings.Split(resp.Scope, " ")
	}
	return set
}

// statReport é a resposta do relatório diário de campanhas do SearchAd
type statReport struct {
	Data []struct {
		CampaignID  string  `json:"nccCampaignId"`
		Name        string  `json:"name"`
		Status      string  `json:"status"`
		StatDate    string  `json:"statDt"`
		Impressions int64   `json:"impCnt"`
		Clicks      int64   `json:"clkCnt"`
		Spend       float64 `json:"salesAmt"`
		Conversions int64   `json:"ccnt"`
		Revenue     float64 `json:"convAmt"`
	} `json:"data"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

type campaignPager struct {
	svc         *Service
	accessToken string
	accountID   string
	window      domain.SyncWindow
	offset      int
	limit       int
}

func (s *Service) FetchCampaigns(accessToken, externalAccountID string, window domain.SyncWindow) platform.CampaignPager {
	return &campaignPager{
		svc:         s,
		accessToken: accessToken,
		accountID:   externalAccountID,
		window:      window,
		limit:       200,
	}
}

func (p *campaignPager) Next(ctx context.Context) ([]domain.CampaignMetricRecord, bool, error) {
	params := url.Values{}
	params.Set("customerId", p.accountID)
	params.Set("statDtFrom", p.window.Start.Format("20060102"))
	params.Set("statDtTo", p.window.End.Format("20060102"))
	params.Set("offset", strconv.Itoa(p.offset))
	params.Set("limit", strconv.Itoa(p.limit))

	requestURL := p.svc.cfg.APIURL + "/stats/campaigns?" + params.Encode()
	headers := map[string]string{
		"Authorization": "Bearer " + p.accessToken,
		"X-Customer":    p.accountID,
	}

	var resp statReport
	if err := p.svc.fetch.GetJSON(ctx, platformName, requestURL, headers, &resp); err != nil {
		return nil, true, err
	}

	records := make([]domain.CampaignMetricRecord, 0, len(resp.Data))
	for _, row := range resp.Data {
		date, err := time.Parse("20060102", row.StatDate)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"platform":    platformName,
				"campaign_id": row.CampaignID,
				"stat_date":   row.StatDate,
			}).Warn("Data de métrica fora do formato esperado, pulando registro")
			continue
		}

		records = append(records, domain.CampaignMetricRecord{
			Platform:           domain.PlatformNaver,
			PlatformCampaignID: row.CampaignID,
			ExternalAccountID:  p.accountID,
			Date:               date,
			Name:               row.Name,
			Status:             row.Status,
			Impressions:        row.Impressions,
			Clicks:             row.Clicks,
			Spend:              row.Spend,
			Conversions:        row.Conversions,
			Revenue:            row.Revenue,
		})
	}

	p.offset += len(resp.Data)
	hasMore := p.offset < resp.Total && len(resp.Data) > 0

	return records, hasMore, nil
}
