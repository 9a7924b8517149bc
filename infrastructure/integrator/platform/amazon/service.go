package amazon

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

const platformName = "amazon"

// Service implementa o adaptador do Amazon Ads via Login with Amazon (LWA).
// O refresh token do LWA não rotaciona e não expira por tempo; apenas o
// access token (1h) precisa de renovação frequente.
type Service struct {
	cfg    config.Amazon
	tokens *platform.TokenClient
	fetch  *platform.FetchClient
}

func New(cfg config.Amazon) *Service {
	return &Service{
		cfg:    cfg,
		tokens: platform.NewTokenClient(30 * time.Second),
		fetch:  platform.NewFetchClient(60 * time.Second),
	}
}

func (s *Service) Platform() domain.Platform {
	return domain.PlatformAmazon
}

func (s *Service) BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error) {
	if len(scopes) == 0 {
		scopes = []string{"advertising::campaign_management"}
	}

	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("scope", strings.Join(scopes, " "))
	params.Set("response_type", "code")
	params.Set("redirect_uri", redirectURI)
	params.Set("state", state)

	return s.cfg.AuthURL + "?" + params.Encode(), nil
}

func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", redirectURI)
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)

	resp, err := s.tokens.PostForm(ctx, platformName, s.cfg.TokenURL, form, platform.GrantExchange)
	if err != nil {
		return nil, err
	}

	return toTokenSet(resp), nil
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)

	resp, err := s.tokens.PostForm(ctx, platformName, s.cfg.TokenURL, form, platform.GrantRefresh)
	if err != nil {
		return nil, err
	}

	set := toTokenSet(resp)
	if set.RefreshToken == nil {
		// LWA não rotaciona o refresh token; preservamos o atual
		set.RefreshToken = &refreshToken
	}
	return set, nil
}

// Revoke é um no-op: o LWA não expõe endpoint de revogação programática;
// o vínculo é desfeito pelo usuário no painel da Amazon
func (s *Service) Revoke(ctx context.Context, token string) error {
	logrus.WithField("platform", platformName).Debug("LWA não expõe revogação de token, ignorando")
	return nil
}

func toTokenSet(resp *platform.TokenEndpointResponse) *domain.TokenSet {
	set := &domain.TokenSet{
		AccessToken: resp.AccessToken,
		ExpiresAt:   platform.ExpiryFromSeconds(resp.ExpiresIn),
	}
	if resp.RefreshToken != "" {
		set.RefreshToken = &resp.RefreshToken
	}
	if resp.Scope != "" {
		set.Scopes = strings.Split(resp.Scope, " ")
	}
	return set
}

// campaignsResponse é a resposta paginada da API de relatórios
type campaignsResponse struct {
	Campaigns []struct {
		CampaignID  int64   `json:"campaignId"`
		Name        string  `json:"name"`
		State       string  `json:"state"`
		Date        string  `json:"date"`
		Impressions int64   `json:"impressions"`
		Clicks      int64   `json:"clicks"`
		Cost        float64 `json:"cost"`
		Purchases   int64   `json:"purchases14d"`
		Sales       float64 `json:"sales14d"`
	} `json:"campaigns"`
	TotalResults int `json:"totalResults"`
}

type campaignPager struct {
	svc         *Service
	accessToken string
	profileID   string
	window      domain.SyncWindow
	startIndex  int
	count       int
}

func (s *Service) FetchCampaigns(accessToken, externalAccountID string, window domain.SyncWindow) platform.CampaignPager {
	return &campaignPager{
		svc:         s,
		accessToken: accessToken,
		profileID:   externalAccountID,
		window:      window,
		count:       100,
	}
}

func (p *campaignPager) Next(ctx context.Context) ([]domain.CampaignMetricRecord, bool, error) {
	params := url.Values{}
	params.Set("startDate", p.window.Start.Format("20060102"))
	params.Set("endDate", p.window.End.Format("20060102"))
	params.Set("startIndex", strconv.Itoa(p.startIndex))
	params.Set("count", strconv.Itoa(p.count))

	requestURL := p.svc.cfg.APIURL + "/v2/sp/campaigns/report?" + params.Encode()
	headers := map[string]string{
		"Authorization":                   "Bearer " + p.accessToken,
		"Amazon-Advertising-API-ClientId": p.svc.cfg.ClientID,
		"Amazon-Advertising-API-Scope":    p.profileID,
	}

	var resp campaignsResponse
	if err := p.svc.fetch.GetJSON(ctx, platformName, requestURL, headers, &resp); err != nil {
		return nil, true, err
	}

	records := make([]domain.CampaignMetricRecord, 0, len(resp.Campaigns))
	for _, c := range resp.Campaigns {
		date, err := time.Parse("20060102", c.Date)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"platform":    platformName,
				"campaign_id": c.CampaignID,
				"date":        c.Date,
			}).Warn("Data de métrica fora do formato esperado, pulando registro")
			continue
		}

		records = append(records, domain.CampaignMetricRecord{
			Platform:           domain.PlatformAmazon,
			PlatformCampaignID: strconv.FormatInt(c.CampaignID, 10),
			ExternalAccountID:  p.profileID,
			Date:               date,
			Name:               c.Name,
			Status:             c.State,
			Impressions:        c.Impressions,
			Clicks:             c.Clicks,
			Spend:              c.Cost,
			Conversions:        c.Purchases,
			Revenue:            c.Sales,
		})
	}

	p.startIndex += len(resp.Campaigns)
	hasMore := p.startIndex < resp.TotalResults && len(resp.Campaigns) > 0

	return records, hasMore, nil
}
