package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/repository"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening"
)

// CampaignSyncService gerencia o agendamento e execução da sincronização de
// métricas de campanha de todas as plataformas vinculadas
type CampaignSyncService struct {
	scheduler    *gocron.Scheduler
	config       config.CampaignSync
	tokenManager tokening.TokenManager
	registry     *platform.Registry

	credentialRepo repository.CredentialRepository
	metricRepo     repository.CampaignMetricRepository

	syncRunning         bool
	syncMutex           sync.Mutex
	lastSyncStartedAt   time.Time
	lastSyncCompletedAt time.Time
	lastSummary         *SyncSummary

	// substituível nos testes para não dormir de verdade
	sleepFn func(ctx context.Context, d time.Duration)
	now     func() time.Time
}

// sleepContext aguarda a duração informada sem ignorar o cancelamento do lote
func sleepContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// SyncSummary resume o resultado de uma rodada de sincronização
type SyncSummary struct {
	SyncType       domain.SyncType
	Total          int
	Succeeded      int
	FailedRetry    int
	FailedTerminal int
	Records        int
	StartedAt      time.Time
	Duration       time.Duration
}

// NewCampaignSyncService cria uma nova instância do serviço de sincronização de campanhas
func NewCampaignSyncService(
	credentialRepo repository.CredentialRepository,
	metricRepo repository.CampaignMetricRepository,
	tokenManager tokening.TokenManager,
	registry *platform.Registry,
	cfg config.CampaignSync,
) *CampaignSyncService {
	scheduler := gocron.NewScheduler(time.UTC)

	logrus.WithFields(logrus.Fields{
		"full_cron":           cfg.FullCron,
		"incremental_cron":    cfg.IncrementalCron,
		"max_concurrent_jobs": cfg.MaxConcurrentJobs,
		"max_attempts":        cfg.MaxAttempts,
		"full_lookback_days":  cfg.FullLookbackDays,
		"sync_enabled":        cfg.Enabled,
	}).Info("Configuração do agendador de sincronização de campanhas carregada")

	return &CampaignSyncService{
		scheduler:      scheduler,
		config:         cfg,
		tokenManager:   tokenManager,
		registry:       registry,
		credentialRepo: credentialRepo,
		metricRepo:     metricRepo,
		sleepFn:        sleepContext,
		now:            time.Now,
	}
}

// Start agenda as sincronizações FULL e INCREMENTAL
func (s *CampaignSyncService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Sincronização de campanhas desabilitada por configuração")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"full_cron":        s.config.FullCron,
		"incremental_cron": s.config.IncrementalCron,
	}).Info("Iniciando agendador de sincronização de campanhas")

	_, err := s.scheduler.Cron(s.config.FullCron).Do(func() {
		s.runSync(context.Background(), domain.SyncTypeFull)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização FULL: %w", err)
	}

	_, err = s.scheduler.Cron(s.config.IncrementalCron).Do(func() {
		s.runSync(context.Background(), domain.SyncTypeIncremental)
	})
	if err != nil {
		return fmt.Errorf("erro ao agendar sincronização INCREMENTAL: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Parando agendador de sincronização de campanhas")
		s.scheduler.Stop()
	}()

	return nil
}

// runSync executa uma rodada completa de sincronização para todas as
// credenciais ativas. Cada credencial vira um job independente: a falha de um
// time nunca interrompe os demais.
func (s *CampaignSyncService) runSync(ctx context.Context, syncType domain.SyncType) *SyncSummary {
	startTime := s.now()

	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de campanhas já em andamento, ignorando")
		return nil
	}
	s.syncRunning = true
	s.lastSyncStartedAt = startTime
	s.syncMutex.Unlock()

	defer func() {
		s.syncMutex.Lock()
		s.syncRunning = false
		s.syncMutex.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, s.config.BatchDeadline)
	defer cancel()

	logrus.WithField("sync_type", syncType).Info("Iniciando sincronização de campanhas para todas as credenciais ativas")

	credentials, err := s.credentialRepo.ListActiveCredentials(nil)
	if err != nil {
		logrus.WithError(err).Error("Erro ao buscar credenciais para sincronização de campanhas")
		return nil
	}

	if len(credentials) == 0 {
		logrus.Info("Nenhuma credencial ativa encontrada para sincronização de campanhas")
		return &SyncSummary{SyncType: syncType, StartedAt: startTime}
	}

	jobs := make([]*domain.SyncJob, 0, len(credentials))
	for _, credential := range credentials {
		jobs = append(jobs, &domain.SyncJob{
			TeamID:   credential.TeamID,
			Platform: credential.Platform,
			SyncType: syncType,
			Window:   s.windowFor(credential, syncType),
			Status:   domain.SyncJobPending,
		})
	}

	s.processJobs(ctx, credentials, jobs)

	summary := &SyncSummary{
		SyncType:  syncType,
		Total:     len(jobs),
		StartedAt: startTime,
		Duration:  time.Since(startTime),
	}
	for _, job := range jobs {
		switch job.Status {
		case domain.SyncJobSucceeded:
			summary.Succeeded++
			summary.Records += job.RecordCount
		case domain.SyncJobFailedRetryable:
			summary.FailedRetry++
		case domain.SyncJobFailedTerminal:
			summary.FailedTerminal++
		}
	}

	s.syncMutex.Lock()
	s.lastSyncCompletedAt = s.now()
	s.lastSummary = summary
	s.syncMutex.Unlock()

	logrus.WithFields(logrus.Fields{
		"sync_type":       syncType,
		"duration":        summary.Duration.String(),
		"total":           summary.Total,
		"succeeded":       summary.Succeeded,
		"failed_retry":    summary.FailedRetry,
		"failed_terminal": summary.FailedTerminal,
		"records":         summary.Records,
	}).Info("Sincronização de campanhas concluída")

	return summary
}

// windowFor calcula a janela de datas do job. FULL cobre o lookback completo;
// INCREMENTAL continua de onde a última sincronização parou.
func (s *CampaignSyncService) windowFor(credential *domain.Credential, syncType domain.SyncType) domain.SyncWindow {
	end := s.now()

	if syncType == domain.SyncTypeFull {
		return domain.SyncWindow{
			Start: end.AddDate(0, 0, -s.config.FullLookbackDays),
			End:   end,
		}
	}

	// Sem marca d'água, o incremental cobre o último dia
	start := end.AddDate(0, 0, -1)
	if credential.LastSyncedAt != nil {
		start = *credential.LastSyncedAt
	}

	return domain.SyncWindow{Start: start, End: end}
}

// processJobs executa os jobs com um pool de workers limitado por semáforo
func (s *CampaignSyncService) processJobs(ctx context.Context, credentials []*domain.Credential, jobs []*domain.SyncJob) {
	semaphore := make(chan struct{}, s.config.MaxConcurrentJobs)
	var wg sync.WaitGroup

	for i := range jobs {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(credential *domain.Credential, job *domain.SyncJob) {
			defer func() {
				<-semaphore
				wg.Done()
			}()

			s.executeJob(ctx, credential, job)
		}(credentials[i], jobs[i])
	}

	wg.Wait()
}

// executeJob roda um job do início ao fim, aplicando as políticas de retry:
// rate limit re-tenta com espera até o limite de tentativas; rejeição de
// autenticação força um refresh e uma única re-tentativa.
func (s *CampaignSyncService) executeJob(ctx context.Context, credential *domain.Credential, job *domain.SyncJob) {
	fields := logrus.Fields{
		"team_id":   job.TeamID,
		"platform":  job.Platform,
		"sync_type": job.SyncType,
		"start":     job.Window.Start.Format(time.DateOnly),
		"end":       job.Window.End.Format(time.DateOnly),
	}
	logrus.WithFields(fields).Info("Processando sincronização de campanhas para credencial")

	refreshForced := false

	for job.Attempts = 1; job.Attempts <= s.config.MaxAttempts; job.Attempts++ {
		if ctx.Err() != nil {
			job.Status = domain.SyncJobFailedTerminal
			job.FailReason = "lote de sincronização cancelado"
			logrus.WithFields(fields).WithError(ctx.Err()).Warn("Lote de sincronização cancelado antes de concluir a credencial")
			return
		}

		job.Status = domain.SyncJobRunning

		count, err := s.syncOnce(ctx, credential, job, refreshForced)
		if err == nil {
			job.Status = domain.SyncJobSucceeded
			job.RecordCount = count

			if uerr := s.credentialRepo.UpdateLastSyncedAt(credential.ID, job.Window.End); uerr != nil {
				logrus.WithFields(fields).WithError(uerr).Warn("Erro ao atualizar a marca de última sincronização")
			}

			logrus.WithFields(fields).WithField("records", count).Info("Sincronização de campanhas concluída para credencial")
			return
		}

		if rateLimited, ok := platform.AsRateLimited(err); ok {
			wait := s.config.RetryBackoffFloor
			if rateLimited.RetryAfter > wait {
				wait = rateLimited.RetryAfter
			}

			logrus.WithFields(fields).WithFields(logrus.Fields{
				"attempt":     job.Attempts,
				"retry_after": wait.String(),
			}).Warn("Rate limit atingido durante a sincronização, aguardando para re-tentar")

			if job.Attempts < s.config.MaxAttempts {
				job.Status = domain.SyncJobFailedRetryable
				s.sleepFn(ctx, wait)
			}
			continue
		}

		if platform.IsAuthRejected(err) {
			if refreshForced {
				// Refresh forçado já tentado; a credencial precisa de reautorização
				job.Status = domain.SyncJobFailedTerminal
				job.FailReason = err.Error()
				logrus.WithFields(fields).WithError(err).Error("Token rejeitado mesmo após refresh forçado, credencial exige reautorização")
				return
			}

			logrus.WithFields(fields).WithError(err).Warn("Token rejeitado pelo provedor, forçando refresh antes de re-tentar")
			refreshForced = true
			// A re-tentativa pós-refresh não consome o orçamento de tentativas
			job.Attempts--
			continue
		}

		if tokening.IsReauthRequired(err) {
			job.Status = domain.SyncJobFailedTerminal
			job.FailReason = err.Error()
			logrus.WithFields(fields).WithError(err).Error("Credencial sem autorização válida, sincronização abortada para o time")
			return
		}

		logrus.WithFields(fields).WithFields(logrus.Fields{
			"attempt": job.Attempts,
		}).WithError(err).Warn("Erro transitório durante a sincronização de campanhas")

		if job.Attempts < s.config.MaxAttempts {
			job.Status = domain.SyncJobFailedRetryable
			s.sleepFn(ctx, s.config.RetryBackoffFloor)
		}
	}

	// Esgotar as tentativas encerra o job nesta rodada; a próxima rodada
	// agendada cobre a janela de novo
	job.Status = domain.SyncJobFailedTerminal
	job.FailReason = "limite de tentativas excedido"
	logrus.WithFields(fields).Error("Sincronização de campanhas esgotou as tentativas para a credencial")
}

// syncOnce percorre todas as páginas do provedor e grava as métricas
func (s *CampaignSyncService) syncOnce(ctx context.Context, credential *domain.Credential, job *domain.SyncJob, forceRefresh bool) (int, error) {
	var (
		accessToken string
		err         error
	)

	if forceRefresh {
		accessToken, err = s.tokenManager.ForceRefresh(ctx, job.TeamID, job.Platform)
	} else {
		accessToken, err = s.tokenManager.GetValidToken(ctx, job.TeamID, job.Platform)
	}
	if err != nil {
		return 0, err
	}

	adapter, err := s.registry.Get(job.Platform)
	if err != nil {
		return 0, err
	}

	accountID := ""
	if credential.AccountID != nil {
		accountID = *credential.AccountID
	}

	pager := adapter.FetchCampaigns(accessToken, accountID, job.Window)

	total := 0
	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()
		default:
		}

		records, hasMore, err := pager.Next(ctx)
		if err != nil {
			return total, err
		}

		for i := range records {
			records[i].TeamID = job.TeamID
		}

		saved, err := s.metricRepo.UpsertMetrics(records)
		if err != nil {
			return total, err
		}
		total += saved

		if !hasMore {
			return total, nil
		}
	}
}

// TriggerManualSync inicia manualmente uma sincronização de campanhas
func (s *CampaignSyncService) TriggerManualSync(syncType domain.SyncType) {
	s.syncMutex.Lock()
	if s.syncRunning {
		s.syncMutex.Unlock()
		logrus.Info("Sincronização de campanhas já em andamento, ignorando solicitação manual")
		return
	}
	s.syncMutex.Unlock()

	logrus.WithField("sync_type", syncType).Info("Iniciando sincronização manual de campanhas")
	go s.runSync(context.Background(), syncType)
}

// GetStatus retorna o status atual do agendador
func (s *CampaignSyncService) GetStatus() map[string]any {
	s.syncMutex.Lock()
	defer s.syncMutex.Unlock()

	status := map[string]any{
		"sync_enabled":           s.config.Enabled,
		"full_cron":              s.config.FullCron,
		"incremental_cron":       s.config.IncrementalCron,
		"max_concurrent_jobs":    s.config.MaxConcurrentJobs,
		"max_attempts":           s.config.MaxAttempts,
		"sync_running":           s.syncRunning,
		"last_sync_started_at":   s.lastSyncStartedAt,
		"last_sync_completed_at": s.lastSyncCompletedAt,
	}

	if s.lastSummary != nil {
		status["last_summary"] = map[string]any{
			"sync_type":       s.lastSummary.SyncType,
			"total":           s.lastSummary.Total,
			"succeeded":       s.lastSummary.Succeeded,
			"failed_retry":    s.lastSummary.FailedRetry,
			"failed_terminal": s.lastSummary.FailedTerminal,
			"records":         s.lastSummary.Records,
		}
	}

	return status
}
