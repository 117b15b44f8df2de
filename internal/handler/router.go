package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/", HomeHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/refresh-token", h.RefreshToken).Methods(http.MethodPost)

	api.HandleFunc("/me", h.GetCurrentUser).Methods(http.MethodGet)
	api.HandleFunc("/me", h.UpdateCurrentUser).Methods(http.MethodPut)
	api.HandleFunc("/me/completions", h.GetCompletions).Methods(http.MethodGet)

	api.HandleFunc("/posts", h.GetPosts).Methods(http.MethodGet)
	api.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}", h.UpdatePost).Methods(http.MethodPut)
	api.HandleFunc("/posts/{id}", h.DeletePost).Methods(http.MethodDelete)
	api.HandleFunc("/posts/{id}/views", h.IncrementViews).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/likes", h.IncrementLikes).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/submission", h.GetSubmission).Methods(http.MethodGet)
	api.HandleFunc("/posts/{id}/submissions", h.Submit).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/progress", h.Progress).Methods(http.MethodPost)
	api.HandleFunc("/posts/{id}/stats", h.GetStats).Methods(http.MethodGet)

	api.HandleFunc("/lite-posts", h.GetLitePosts).Methods(http.MethodGet)
	api.HandleFunc("/lite-posts/{id}", h.GetLitePost).Methods(http.MethodGet)
	api.HandleFunc("/lite-posts/{id}/views", h.IncrementLiteViews).Methods(http.MethodPost)
	api.HandleFunc("/lite-posts/{id}/likes", h.IncrementLiteLikes).Methods(http.MethodPost)

	api.HandleFunc("/images", h.UploadImage).Methods(http.MethodPost)
	api.HandleFunc("/images/{id}", h.DeleteImage).Methods(http.MethodDelete)

	methodNotAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})
	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, "Не найдено", http.StatusNotFound)
	})

	// subrouters do not inherit these from the root router
	r.MethodNotAllowedHandler = methodNotAllowed
	r.NotFoundHandler = notFound
	api.MethodNotAllowedHandler = methodNotAllowed
	api.NotFoundHandler = notFound

	return r
}
