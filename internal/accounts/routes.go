// internal/accounts/routes.go
package accounts

import (
	"github.com/gorilla/mux"
)

func RegisterRoutes(router *mux.Router, handler *Handler, authMiddleware *Middleware) {
	// Public routes
	public := router.PathPrefix("/accounts").Subrouter()
	public.HandleFunc("/register/", handler.Register).Methods("POST")
	public.HandleFunc("/login/", handler.Login).Methods("POST")
	public.HandleFunc("/token/refresh/", handler.RefreshToken).Methods("POST")

	// Protected routes
	protected := router.PathPrefix("/accounts").Subrouter()
	protected.Use(authMiddleware.Authenticate)

	protected.HandleFunc("/logout/", handler.Logout).Methods("POST")
	protected.HandleFunc("/profile/", handler.GetMyProfile).Methods("GET")
	protected.HandleFunc("/profile/", handler.UpdateProfile).Methods("PUT", "PATCH")
	protected.HandleFunc("/profile/me/", handler.GetMyProfile).Methods("GET")
	protected.HandleFunc("/profile/{id}/", handler.GetProfile).Methods("GET")
	protected.HandleFunc("/verify-email/", handler.VerifyEmail).Methods("POST")
	protected.HandleFunc("/verification-status/", handler.VerificationStatus).Methods("GET")
}
