package handler

import (
	"net/http"

	"github.com/seongpil0948/all-ad-sub006/internal/api/handler/router"
	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/scheduler"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/linking"
	"github.com/seongpil0948/all-ad-sub006/pkg/middleware"
)

func Healthcheck() []router.Route {
	return []router.Route{
		{
			Path:    "/healthcheck",
			Method:  http.MethodGet,
			Handler: HealthcheckHandler(),
		},
	}
}

// OAuth retorna as rotas do fluxo de autorização das plataformas.
// O callback é chamado pelo navegador do usuário e não leva autenticação;
// a integridade do fluxo é garantida pelo state assinado.
func OAuth(service linking.Linker, cfg config.Auth) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/oauth/:platform/authorize",
			Method:  http.MethodGet,
			Handler: StartAuthorization(service),
		},
		{
			Path:    "/v1/oauth/:platform/callback",
			Method:  http.MethodGet,
			Handler: HandleCallback(service, cfg),
		},
	}
}

// Connections retorna as rotas de consulta e remoção de vínculos dos times
func Connections(service linking.Linker) []router.Route {
	return []router.Route{
		{
			Path:    "/v1/teams/:teamId/connections",
			Method:  http.MethodGet,
			Handler: ListConnections(service),
		},
		{
			Path:    "/v1/teams/:teamId/connections/:platform",
			Method:  http.MethodDelete,
			Handler: DisconnectPlatform(service),
		},
	}
}

// CronJobs retorna as rotas de disparo e status da sincronização, protegidas
// pelo segredo compartilhado do agendador externo
func CronJobs(service *scheduler.CampaignSyncService, cronSecret string) []router.Route {
	return []router.Route{
		{
			Path:        "/v1/cron/sync/:type",
			Method:      http.MethodPost,
			Handler:     TriggerSync(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.CronSecret(cronSecret)},
		},
		{
			Path:        "/v1/cron/status",
			Method:      http.MethodGet,
			Handler:     GetCronStatus(service),
			Middlewares: []func(http.Handler) http.Handler{middleware.CronSecret(cronSecret)},
		},
	}
}
