package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/infrastructure/cache"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/database/postgres"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/amazon"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/coupang"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/google"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/kakao"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/meta"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/naver"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/integrator/platform/tiktok"
	"github.com/seongpil0948/all-ad-sub006/infrastructure/repository"
	"github.com/seongpil0948/all-ad-sub006/internal/api"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/scheduler"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/linking"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening"
)

func main() {
	// Inicializa configuração de logs
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	// Define o nível de log com base na configuração
	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Nível de log inválido: %s, usando 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Nível de log configurado para: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	redisCache, err := cache.NewRedisCache(ctx, cfg.Redis)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao Redis")
	}
	logrus.Info("Conexão com Redis estabelecida com sucesso")

	credentialRepo := repository.NewCredentialRepository(pgConn)
	metricRepo := repository.NewCampaignMetricRepository(pgConn)

	// Registra os adaptadores de todas as plataformas suportadas
	registry := platform.NewRegistry(
		google.New(cfg.Google),
		meta.New(cfg.Facebook),
		tiktok.New(cfg.TikTok),
		amazon.New(cfg.Amazon),
		kakao.New(cfg.Kakao),
		naver.New(cfg.Naver),
		coupang.New(cfg.Coupang),
	)

	tokenManager := tokening.NewService(credentialRepo, redisCache, registry, cfg.TokenLifecycle)
	linker := linking.NewService(registry, tokenManager, credentialRepo, cfg.Auth)

	campaignSyncService := scheduler.NewCampaignSyncService(
		credentialRepo,
		metricRepo,
		tokenManager,
		registry,
		cfg.CampaignSync,
	)

	if err := campaignSyncService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Erro ao iniciar o agendador de sincronização de campanhas")
	} else {
		logrus.Info("Agendador de sincronização de campanhas iniciado com sucesso")
	}

	server, err := api.New(cfg, linker, campaignSyncService)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

// configureLogger configura o formato e comportamento dos logs
func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

// pgconn cria uma conexão com o banco de dados
func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao conectar ao PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Erro ao testar conexão com PostgreSQL")
	}

	logrus.Info("Conexão com PostgreSQL estabelecida com sucesso")
	return conn
}
