package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/lorettarehm/audhd.ai/internal/api/respond"
	"github.com/lorettarehm/audhd.ai/internal/auth"
)

// authorize resolves the caller from the bearer key. It writes a 401 and
// returns ok=false when the key is missing or rejected.
func authorize(a auth.Authorizer, w http.ResponseWriter, r *http.Request, operation string) (*auth.ActorInfo, bool) {
	apiKey, err := auth.ExtractAPIKey(r)
	if err != nil {
		respond.WriteUnauthorized(w, err.Error())
		return nil, false
	}
	info, err := a.Authorize(r.Context(), apiKey, operation, mux.Vars(r)["conversationId"])
	if err != nil {
		log.Debug().Err(err).Str("operation", operation).Msg("authorization failed")
		respond.WriteUnauthorized(w, err.Error())
		return nil, false
	}
	return info, true
}
