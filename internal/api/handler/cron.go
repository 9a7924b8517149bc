package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/scheduler"
	"github.com/seongpil0948/all-ad-sub006/pkg/apiErrors"
)

// TriggerSyncResponse é a resposta do disparo manual de sincronização
type TriggerSyncResponse struct {
	Success   bool      `json:"success"`
	SyncType  string    `json:"syncType"`
	Timestamp time.Time `json:"timestamp"`
}

// TriggerSync dispara manualmente uma rodada de sincronização de campanhas.
// A execução é assíncrona: a resposta confirma apenas o agendamento.
func TriggerSync(service *scheduler.CampaignSyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - TriggerSync")

		rawType := httprouter.ParamsFromContext(r.Context()).ByName("type")
		if rawType == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Tipo de sincronização não especificado", nil)
			return
		}

		syncType, ok := domain.ParseSyncType(rawType)
		if !ok {
			apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Tipo de sincronização inválido. Valores aceitos: FULL, INCREMENTAL", nil)
			return
		}

		service.TriggerManualSync(syncType)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TriggerSyncResponse{
			Success:   true,
			SyncType:  string(syncType),
			Timestamp: time.Now().UTC(),
		})
	}
}

// GetCronStatus retorna o status do agendador de sincronização
func GetCronStatus(service *scheduler.CampaignSyncService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - GetCronStatus")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"campaign_sync": service.GetStatus(),
		})
	}
}
