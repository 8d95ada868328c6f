package api

import (
	"net/http"

	"github.com/edmetrics/lessons-media-go/internal/port"
)

func ListAvatarsHandler(svc port.CatalogGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetAvatars(r.Context())
		if err != nil {
			WriteError(w, http.StatusBadGateway, "could not fetch avatar catalog", err)
			return
		}
		RespondRawJSON(w, http.StatusOK, out)
	}
}

func ListVoicesHandler(svc port.CatalogGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetVoices(r.Context())
		if err != nil {
			WriteError(w, http.StatusBadGateway, "could not fetch voice catalog", err)
			return
		}
		RespondRawJSON(w, http.StatusOK, out)
	}
}

func RemainingQuotaHandler(svc port.CatalogGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := svc.GetQuota(r.Context())
		if err != nil {
			WriteError(w, http.StatusBadGateway, "could not fetch remaining quota", err)
			return
		}
		RespondRawJSON(w, http.StatusOK, out)
	}
}
