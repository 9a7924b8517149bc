package domain

import "time"

// CampaignMetricRecord é o registro normalizado de métricas diárias de uma campanha.
// A chave natural é (Platform, PlatformCampaignID, Date) e toda escrita é um upsert
// idempotente sobre essa chave.
type CampaignMetricRecord struct {
	TeamID             string
	Platform           Platform
	PlatformCampaignID string
	ExternalAccountID  string
	Date               time.Time
	Name               string
	Status             string
	Impressions        int64
	Clicks             int64
	Spend              float64
	Conversions        int64
	Revenue            float64
}
