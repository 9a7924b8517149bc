package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"

	"github.com/seongpil0948/all-ad-sub006/internal/config"
	"github.com/seongpil0948/all-ad-sub006/internal/domain"
	"github.com/seongpil0948/all-ad-sub006/internal/usecases/linking"
	"github.com/seongpil0948/all-ad-sub006/pkg/apiErrors"
)

// StartAuthorization redireciona o usuário para a tela de consentimento da
// plataforma com o state assinado
func StartAuthorization(service linking.Linker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - StartAuthorization")

		rawPlatform := httprouter.ParamsFromContext(r.Context()).ByName("platform")
		p, err := domain.ParsePlatform(rawPlatform)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrUnknownPlatform, "Plataforma de anúncios desconhecida", nil)
			return
		}

		teamID := r.URL.Query().Get("teamId")
		if teamID == "" {
			apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "Parâmetro teamId é obrigatório", nil)
			return
		}

		authURL, err := service.StartLink(teamID, p)
		if err != nil {
			if errors.Is(err, linking.ErrAuthorizationKeysOnly) {
				apiErrors.WriteError(w, apiErrors.ErrAuthorizationViaKeys, "Plataforma vinculada por chaves de API, sem fluxo de autorização", nil)
				return
			}

			logrus.WithFields(logrus.Fields{
				"team_id":  teamID,
				"platform": p,
			}).WithError(err).Error("Erro ao iniciar o fluxo de autorização")
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao iniciar o fluxo de autorização", nil)
			return
		}

		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// HandleCallback finaliza o fluxo de autorização. O usuário chega aqui vindo
// da plataforma; o resultado é um redirect para o painel, nunca um JSON.
func HandleCallback(service linking.Linker, cfg config.Auth) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logrus.Info("INIT - HandleCallback")

		rawPlatform := httprouter.ParamsFromContext(r.Context()).ByName("platform")
		query := r.URL.Query()

		// A plataforma sinaliza recusa de consentimento pelo parâmetro error
		if errCode := query.Get("error"); errCode != "" {
			logrus.WithFields(logrus.Fields{
				"platform": rawPlatform,
				"error":    errCode,
			}).Warn("Autorização recusada pelo usuário ou pela plataforma")
			redirectFailure(w, r, cfg, "consent_denied")
			return
		}

		code := query.Get("code")
		state := query.Get("state")
		if code == "" || state == "" {
			redirectFailure(w, r, cfg, "missing_parameters")
			return
		}

		credential, err := service.CompleteLink(r.Context(), state, code)
		if err != nil {
			reason := "exchange_failed"
			if errors.Is(err, linking.ErrInvalidState) {
				reason = "invalid_state"
			}

			logrus.WithField("platform", rawPlatform).WithError(err).Error("Erro ao finalizar a vinculação")
			redirectFailure(w, r, cfg, reason)
			return
		}

		logrus.WithFields(logrus.Fields{
			"team_id":  credential.TeamID,
			"platform": credential.Platform,
		}).Info("Vinculação concluída via callback")

		successURL := fmt.Sprintf("%s?platform=%s", cfg.LinkSuccessRedirect, url.QueryEscape(string(credential.Platform)))
		http.Redirect(w, r, successURL, http.StatusFound)
	}
}

func redirectFailure(w http.ResponseWriter, r *http.Request, cfg config.Auth, reason string) {
	failureURL := fmt.Sprintf("%s?reason=%s", cfg.LinkFailureRedirect, url.QueryEscape(reason))
	http.Redirect(w, r, failureURL, http.StatusFound)
}
