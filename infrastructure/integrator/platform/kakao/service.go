package kakao

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const platformName = "kakao"

// Service implementa o adaptador da Kakao Moment (anúncios Kakao).
// Peculiaridade do dialeto: o refresh grant só devolve um novo refresh token
// quando o atual está próximo da própria expiração; a ausência no payload
// significa "mantenha o anterior".
type Service struct {
	cfg    config.Kakao
	tokens *platform.TokenClient
	fetch  *platform.FetchClient
}

func New(cfg config.Kakao) *Service {
	return &Service{
		cfg:    cfg,
		tokens: platform.NewTokenClient(30 * time.Second),
		fetch:  platform.NewFetchClient(60 * time.Second),
	}
}

func (s *Service) Platform() domain.Platform {
	return domain.PlatformKakao
}

func (s *Service) BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error) {
	params := url.Values{}
	params.Set("client_id", s.cfg.ClientID)
	params.Set("redirect_uri", redirectURI)
	params.Set("response_type", "code")
	params.Set("state", state)
	if len(scopes) > 0 {
		params.Set("scope", strings.Join(scopes, " "))
	}

	return s.cfg.AuthURL + "?" + params.Encode(), nil
}

func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("client_id", s.cfg.ClientID)
	form.Set("client_secret", s.cfg.ClientSecret)
	form.Set("redirect_uri", redirectURI)
	form.Set("code", code)

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

// Revoke é um no-op para a Kakao: o kauth não expõe endpoint de revogação de
// token; a invalidação acontece quando o usuário desvincula o aplicativo
func (s *Service) Revoke(ctx context.Context, token string) error {
	logrus.WithField("platform", platformName).Debug("Kakao não expõe revogação de token, ignorando")
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

// campaignsPage é a resposta paginada da API Moment
type campaignsPage struct {
	Campaigns []struct {
		ID          int64   `json:"id"`
		Name        string  `json:"name"`
		Status      string  `json:"status"`
		Date        string  `json:"date"`
		Impressions int64   `json:"imp"`
		Clicks      int64   `json:"click"`
		Spend       float64 `json:"spending"`
		Conversions int64   `json:"conversion"`
		Revenue     float64 `json:"conversion_value"`
	} `json:"campaigns"`
	TotalCount int `json:"total_count"`
	Page       int `json:"page"`
	Size       int `json:"size"`
}

type campaignPager struct {
	svc         *Service
	accessToken string
	accountID   string
	window      domain.SyncWindow
	page        int
	pageSize    int
}

func (s *Service) FetchCampaigns(accessToken, externalAccountID string, window domain.SyncWindow) platform.CampaignPager {
	return &campaignPager{
		svc:         s,
		accessToken: accessToken,
		accountID:   externalAccountID,
		window:      window,
		page:        1,
		pageSize:    100,
	}
}

func (p *campaignPager) Next(ctx context.Context) ([]domain.CampaignMetricRecord, bool, error) {
	params := url.Values{}
	params.Set("adAccountId", p.accountID)
	params.Set("since", p.window.Start.Format(time.DateOnly))
	params.Set("until", p.window.End.Format(time.DateOnly))
	params.Set("page", fmt.Sprintf("%d", p.page))
	params.Set("size", fmt.Sprintf("%d", p.pageSize))

	requestURL := p.svc.cfg.APIURL + "/campaigns/report?" + params.Encode()
	headers := map[string]string{"Authorization": "Bearer " + p.accessToken}

	var resp campaignsPage
	if err := p.svc.fetch.GetJSON(ctx, platformName, requestURL, headers, &resp); err != nil {
		return nil, true, err
	}

	records := make([]domain.CampaignMetricRecord, 0, len(resp.Campaigns))
	for _, c := range resp.Campaigns {
		date, err := time.Parse(time.DateOnly, c.Date)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"platform":    platformName,
				"campaign_id": c.ID,
				"date":        c.Date,
			}).Warn("Data de métrica fora do formato esperado, pulando registro")
			continue
		}

		records = append(records, domain.CampaignMetricRecord{
			Platform:           domain.PlatformKakao,
			PlatformCampaignID: fmt.Sprintf("%d", c.ID),
			ExternalAccountID:  p.accountID,
			Date:               date,
			Name:               c.Name,
			Status:             c.Status,
			Impressions:        c.Impressions,
			Clicks:             c.Clicks,
			Spend:              c.Spend,
			Conversions:        c.Conversions,
			Revenue:            c.Revenue,
		})
	}

	// Página cheia indica que provavelmente há mais resultados
	hasMore := len(resp.Campaigns) == p.pageSize
	p.page++

	return records, hasMore, nil
}
