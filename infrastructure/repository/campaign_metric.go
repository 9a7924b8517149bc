package repository

import (
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/database/postgres"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
)

const campaignMetricsTable = "campaign_metrics"

// upsertBatchSize limita o número de registros por INSERT para não estourar
// o limite de parâmetros do Postgres
const upsertBatchSize = 500

type CampaignMetricRepository interface {
	UpsertMetrics(records []domain.CampaignMetricRecord) (int, error)
}

type campaignMetricRepository struct {
	conn *postgres.Connection
}

func NewCampaignMetricRepository(conn *postgres.Connection) CampaignMetricRepository {
	return &campaignMetricRepository{
		conn: conn,
	}
}

// UpsertMetrics insere ou atualiza as métricas diárias de campanha. A chave de
// idempotência é (platform, platform_campaign_id, date): reprocessar a mesma
// janela sobrescreve os valores do dia em vez de duplicar linhas.
func (r *campaignMetricRepository) UpsertMetrics(records []domain.CampaignMetricRecord) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	total := 0

	for start := 0; start < len(records); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(records) {
			end = len(records)
		}

		if err := r.upsertBatch(records[start:end]); err != nil {
			return total, err
		}

		total += end - start
	}

	return total, nil
}

func (r *campaignMetricRepository) upsertBatch(records []domain.CampaignMetricRecord) error {
	query := squirrel.StatementBuilder.
		Insert(campaignMetricsTable).
		Columns("team_id", "platform", "platform_campaign_id", "external_account_id",
			"date", "name", "status", "impressions", "clicks", "spend", "conversions", "revenue").
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		query = query.Values(
			record.TeamID,
			record.Platform,
			record.PlatformCampaignID,
			record.ExternalAccountID,
			record.Date,
			record.Name,
			record.Status,
			record.Impressions,
			record.Clicks,
			record.Spend,
			record.Conversions,
			record.Revenue,
		)
	}

	query = query.Suffix(`
			ON CONFLICT (platform, platform_campaign_id, date) DO UPDATE SET
				team_id = EXCLUDED.team_id,
				external_account_id = EXCLUDED.external_account_id,
				name = EXCLUDED.name,
				status = EXCLUDED.status,
				impressions = EXCLUDED.impressions,
				clicks = EXCLUDED.clicks,
				spend = EXCLUDED.spend,
				conversions = EXCLUDED.conversions,
				revenue = EXCLUDED.revenue,
				updated_at = NOW()
		`)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("database error: %w (code: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
