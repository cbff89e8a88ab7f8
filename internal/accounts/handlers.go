// internal/accounts/handlers.go
package accounts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/instaclone/backend/internal/common/utils"
)

type Handler struct {
	service Service
	uploads *UploadService
}

func NewHandler(service Service, uploads *UploadService) *Handler {
	return &Handler{
		service: service,
		uploads: uploads,
	}
}

// Register creates a new account and returns the user with a token pair
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrUsernameAlreadyExists) {
			utils.ErrorResponse(w, "Username already taken", http.StatusBadRequest)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusCreated)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			utils.ErrorResponse(w, "Invalid username or password", http.StatusUnauthorized)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}

// Logout blacklists the presented refresh token
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.service.Logout(r.Context(), req.Refresh); err != nil {
		if errors.Is(err, ErrInvalidToken) {
			utils.ErrorResponse(w, "Invalid refresh token", http.StatusBadRequest)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.MessageResponse(w, "Logged out successfully", http.StatusOK)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tokens, err := h.service.RefreshTokens(r.Context(), req.Refresh)
	if err != nil {
		if errors.Is(err, ErrInvalidToken) {
			utils.ErrorResponse(w, "Invalid or expired refresh token", http.StatusUnauthorized)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, tokens, http.StatusOK)
}

// GetMyProfile returns the authenticated user's profile
func (h *Handler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.ErrorResponse(w, "User not found", http.StatusNotFound)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

// GetProfile returns any user's profile by ID
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.ErrorResponse(w, "User not found", http.StatusNotFound)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

// UpdateProfile updates bio, gender and optionally the profile picture.
// Accepts JSON or multipart form data with a "profile_picture" file.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	var imageURL *string

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseMultipartForm(5 << 20); err != nil && err != http.ErrNotMultipart {
			utils.ErrorResponse(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		if v := r.FormValue("bio"); v != "" {
			req.Bio = &v
		}
		if v := r.FormValue("gender"); v != "" {
			req.Gender = &v
		}

		if r.MultipartForm != nil && r.MultipartForm.File != nil {
			if files := r.MultipartForm.File["image"]; len(files) > 0 {
				file, err := files[0].Open()
				if err != nil {
					utils.ErrorResponse(w, "Failed to read uploaded file", http.StatusBadRequest)
					return
				}
				defer file.Close()

				url, err := h.uploads.UploadProfileImage(file, files[0])
				if err != nil {
					utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
					return
				}
				imageURL = &url
			}
		}
	}

	profile, err := h.service.UpdateProfile(r.Context(), userID, &req, imageURL)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.ErrorResponse(w, "User not found", http.StatusNotFound)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

// VerifyEmail attaches a real email to the account and marks it verified
func (h *Handler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req EmailVerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	profile, err := h.service.VerifyEmail(r.Context(), userID, req.Email)
	if err != nil {
		if errors.Is(err, ErrEmailAlreadyExists) {
			utils.ErrorResponse(w, "Email already in use", http.StatusBadRequest)
			return
		}
		if errors.Is(err, ErrUserNotFound) {
			utils.ErrorResponse(w, "User not found", http.StatusNotFound)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, profile, http.StatusOK)
}

func (h *Handler) VerificationStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	status, err := h.service.GetVerificationStatus(r.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			utils.ErrorResponse(w, "User not found", http.StatusNotFound)
			return
		}
		utils.ErrorResponse(w, err.Error(), http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, status, http.StatusOK)
}
