package handler

import (
	"errors"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/linking"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/tokening"
	"github.com/seongpil0948/all-ad-sub006/pkg/apiErrors"
)

// ListConnections retorna o estado de vinculação do time em todas as plataformas
func ListConnections(service linking.Linker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - ListConnections")

		teamID := httprouter.ParamsFromContext(r.Context()).ByName("teamId")
		if teamID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Identificador do time não especificado", nil)
			return
		}

		connections, err := service.ListConnections(teamID)
		if err != nil {
			logrus.WithField("team_id", teamID).WithError(err).Error("Erro ao listar as conexões do time")
			apiErrors.WriteError(w, apiErrors.ErrDatabaseOperation, "Erro ao listar as conexões do time", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"teamId":      teamID,
			"connections": connections,
		})
	}
}

// DisconnectPlatform desfaz o vínculo do time com a plataforma
func DisconnectPlatform(service linking.Linker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - DisconnectPlatform")

		params := httprouter.ParamsFromContext(r.Context())
		teamID := params.ByName("teamId")

		p, err := domain.ParsePlatform(params.ByName("platform"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrUnknownPlatform, "Plataforma de anúncios desconhecida", nil)
			return
		}

		if err := service.Disconnect(r.Context(), teamID, p); err != nil {
			if errors.Is(err, tokening.ErrNotConnected) {
				apiErrors.WriteError(w, apiErrors.ErrPlatformNotConnected, "O time não possui vínculo ativo com esta plataforma", nil)
				return
			}

			logrus.WithFields(logrus.Fields{
				"team_id":  teamID,
				"platform": p,
			}).WithError(err).Error("Erro ao desvincular a plataforma")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao desvincular a plataforma", nil)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"success":  true,
			"teamId":   teamID,
			"platform": p,
		})
	}
}
