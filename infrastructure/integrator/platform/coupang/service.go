package coupang

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const platformName = "coupang"

// Service implementa o adaptador do Coupang Ads.
// O Coupang não usa OAuth: a vinculação é feita por um par de chaves de API
// (accessKey/secretKey) informado pelo time, armazenado como access token no
// formato "accessKey:secretKey". As chaves não expiram e não há refresh grant;
// cada requisição é assinada com HMAC-SHA256 no estilo CEA do marketplace.
type Service struct {
	cfg   config.Coupang
	fetch *platform.FetchClient
	now   func() time.Time
}

func New(cfg config.Coupang) *Service {
	return &Service{
		cfg:   cfg,
		fetch: platform.NewFetchClient(60 * time.Second),
		now:   time.Now,
	}
}

func (s *Service) Platform() domain.Platform {
	return domain.PlatformCoupang
}

func (s *Service) BuildAuthorizationURL(redirectURI, state string, scopes []string) (string, error) {
	return "", platform.ErrAuthorizationNotSupported
}

func (s *Service) ExchangeCode(ctx context.Context, code, redirectURI string) (*domain.TokenSet, error) {
	return nil, &platform.AuthExchangeError{
		Platform: platformName,
		Reason:   "coupang não usa fluxo de autorização OAuth; vincule com chaves de API",
	}
}

// Refresh sempre falha: não existe refresh grant para chaves de API.
// Chegar aqui significa que as chaves foram rejeitadas e precisam ser trocadas
// pelo usuário.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.TokenSet, error) {
	return nil, &platform.InvalidGrantError{
		Platform: platformName,
		Reason:   "chaves de API do coupang não possuem refresh grant; informe novas chaves",
	}
}

// Revoke é local: basta desativar a credencial, as chaves são revogadas pelo
// usuário no painel do Coupang
func (s *Service) Revoke(ctx context.Context, token string) error {
	logrus.WithField("platform", platformName).Debug("Coupang não expõe revogação de chaves, ignorando")
	return nil
}

// splitKeyPair separa o access token armazenado no formato "accessKey:secretKey"
func splitKeyPair(token string) (accessKey, secretKey string, ok bool) {
	parts := strings.SplitN(token, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// sign gera o header de autorização HMAC-SHA256 do estilo CEA
func (s *Service) sign(method, path, query, accessKey, secretKey string) string {
	signedDate := s.now().UTC().Format("060102T150405Z")
	message := signedDate + method + path + query

	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(message))
	signature := hex.EncodeToString(mac.Sum(nil))

	return fmt.Sprintf("CEA algorithm=HmacSHA256, access-key=%s, signed-date=%s, signature=%s",
		accessKey, signedDate, signature)
}

// reportPage é a resposta paginada do relatório de campanhas
type reportPage struct {
	Data []struct {
		CampaignID  string  `json:"campaignId"`
		Name        string  `json:"campaignName"`
		Status      string  `json:"status"`
		Date        string  `json:"date"`
		Impressions int64   `json:"impressions"`
		Clicks      int64   `json:"clicks"`
		AdSpend     float64 `json:"adSpend"`
		Orders      int64   `json:"orders"`
		Sales       float64 `json:"attributedSales"`
	} `json:"data"`
	NextToken string `json:"nextToken"`
}

type campaignPager struct {
	svc         *Service
	accessToken string
	accountID   string
	window      domain.SyncWindow
	nextToken   string
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
	accessKey, secretKey, ok := splitKeyPair(p.accessToken)
	if !ok {
		return nil, false, &platform.AuthRejectedError{
			Platform: platformName,
			Reason:   "par de chaves de API malformado",
		}
	}

	path := "/v1/advertisers/" + p.accountID + "/campaigns/report"

	params := url.Values{}
	params.Set("startDate", p.window.Start.Format("20060102"))
	params.Set("endDate", p.window.End.Format("20060102"))
	params.Set("maxPerPage", strconv.Itoa(200))
	if p.nextToken != "" {
		params.Set("nextToken", p.nextToken)
	}
	query := params.Encode()

	headers := map[string]string{
		"Authorization": p.svc.sign("GET", path, query, accessKey, secretKey),
	}

	var resp reportPage
	if err := p.svc.fetch.GetJSON(ctx, platformName, p.svc.cfg.APIURL+path+"?"+query, headers, &resp); err != nil {
		return nil, true, err
	}

	records := make([]domain.CampaignMetricRecord, 0, len(resp.Data))
	for _, row := range resp.Data {
		date, err := time.Parse("20060102", row.Date)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"platform":    platformName,
				"campaign_id": row.CampaignID,
				"date":        row.Date,
			}).Warn("Data de métrica fora do formato esperado, pulando registro")
			continue
		}

		records = append(records, domain.CampaignMetricRecord{
			Platform:           domain.PlatformCoupang,
			PlatformCampaignID: row.CampaignID,
			ExternalAccountID:  p.accountID,
			Date:               date,
			Name:               row.Name,
			Status:             row.Status,
			Impressions:        row.Impressions,
			Clicks:             row.Clicks,
			Spend:              row.AdSpend,
			Conversions:        row.Orders,
			Revenue:            row.Sales,
		})
	}

	p.nextToken = resp.NextToken

	return records, resp.NextToken != "", nil
}
