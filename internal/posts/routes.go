// internal/posts/routes.go
package posts

import (
	"github.com/gorilla/mux"
	"github.com/instaclone/backend/internal/accounts"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *accounts.Middleware) {
	api := router.PathPrefix("/posts").Subrouter()
	api.Use(authMiddleware.Authenticate)

	// Comment routes before the generic {id} routes
	api.HandleFunc("/comments/{id}/like/", handler.LikeComment).Methods("POST")
	api.HandleFunc("/comments/{id}/", handler.DeleteComment).Methods("DELETE")

	// User posts
	api.HandleFunc("/user/{user_id}/", handler.GetUserPosts).Methods("GET")

	// Post CRUD
	api.HandleFunc("/", handler.ListPosts).Methods("GET")
	api.HandleFunc("/", handler.CreatePost).Methods("POST")
	api.HandleFunc("/{id}/", handler.GetPost).Methods("GET")
	api.HandleFunc("/{id}/", handler.UpdatePost).Methods("PUT")
	api.HandleFunc("/{id}/", handler.DeletePost).Methods("DELETE")

	// Engagement
	api.HandleFunc("/{id}/like/", handler.LikePost).Methods("POST")
	api.HandleFunc("/{id}/comment/", handler.AddComment).Methods("POST")
	api.HandleFunc("/{id}/comments/", handler.GetPostComments).Methods("GET")
}
