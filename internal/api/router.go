package api

import (
	"github.com/gorilla/mux"

	"github.com/lorettarehm/audhd.ai/internal/api/recovery"
	"github.com/lorettarehm/audhd.ai/internal/auth"
	"github.com/lorettarehm/audhd.ai/internal/services"
)

// NewRouter wires every journal route. health may be nil until checkers start.
func NewRouter(svc *services.ConversationService, profiles *services.ProfileService, authz auth.Authorizer, health ServiceHealth) *mux.Router {
	root := mux.NewRouter()
	root.Use(recovery.Middleware)
	root.Use(Metrics)

	users := NewUserHandler(profiles, authz)
	root.HandleFunc("/api/me", users.WhoAmI).Methods("GET")
	root.HandleFunc("/api/me/profile", users.GetProfile).Methods("GET")
	root.HandleFunc("/api/me/profile", users.UpdateProfile).Methods("PUT")

	conv := NewConversationHandler(svc, authz)
	root.HandleFunc("/api/conversations", conv.ListConversations).Methods("GET")
	root.HandleFunc("/api/conversations", conv.CreateConversation).Methods("POST")
	root.HandleFunc("/api/conversations/{conversationId}", conv.GetConversation).Methods("GET")
	root.HandleFunc("/api/conversations/{conversationId}", conv.TouchConversation).Methods("PATCH")
	root.HandleFunc("/api/conversations/{conversationId}", conv.DeleteConversation).Methods("DELETE")
	root.HandleFunc("/api/conversations/{conversationId}/messages", conv.ListMessages).Methods("GET")
	root.HandleFunc("/api/conversations/{conversationId}/messages", conv.CreateMessage).Methods("POST")

	healthHandler := NewHealthHandler(health)
	root.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	root.Handle("/metrics", MetricsHandler()).Methods("GET")
	return root
}
