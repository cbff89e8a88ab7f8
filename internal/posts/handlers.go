// internal/posts/handlers.go
package posts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/instaclone/backend/internal/accounts"
	"github.com/instaclone/backend/internal/common/utils"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreatePostRequest

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseMultipartForm(10 << 20); err != nil && err != http.ErrNotMultipart {
			utils.ErrorResponse(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		req.Caption = r.FormValue("caption")

		if r.MultipartForm != nil && r.MultipartForm.File != nil {
			for _, fileHeader := range r.MultipartForm.File["media"] {
				file, err := fileHeader.Open()
				if err != nil {
					continue
				}
				defer file.Close()

				url, err := h.service.UploadMedia(file, fileHeader)
				if err != nil {
					utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
					return
				}
				req.MediaURLs = append(req.MediaURLs, url)
			}
		}
	}

	post, err := h.service.CreatePost(r.Context(), userID, &req)
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, post, http.StatusCreated)
}

func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	page, pageSize := h.getPagination(r)

	resp, err := h.service.ListPosts(r.Context(), page, pageSize)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}

func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := h.service.GetPost(r.Context(), postID)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, post, http.StatusOK)
}

func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	post, err := h.service.UpdatePost(r.Context(), postID, userID, &req)
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, post, http.StatusOK)
}

func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeletePost(r.Context(), postID, userID); err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	utils.MessageResponse(w, "Post deleted successfully", http.StatusOK)
}

func (h *Handler) GetUserPosts(w http.ResponseWriter, r *http.Request) {
	targetID, err := h.pathID(r, "user_id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid user ID", http.StatusBadRequest)
		return
	}

	page, pageSize := h.getPagination(r)

	resp, err := h.service.ListUserPosts(r.Context(), targetID, page, pageSize)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}

// LikePost toggles the caller's like: 201 when liked, 200 when unliked
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	result, err := h.service.TogglePostLike(r.Context(), postID, userID)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if result.Liked {
		status = http.StatusCreated
	}
	utils.MessageResponse(w, result.Message, status)
}

func (h *Handler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	postID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	comment, err := h.service.AddComment(r.Context(), postID, userID, &req)
	if err != nil {
		h.writeServiceError(w, err, http.StatusBadRequest)
		return
	}

	utils.SuccessResponse(w, comment, http.StatusCreated)
}

func (h *Handler) GetPostComments(w http.ResponseWriter, r *http.Request) {
	postID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid post ID", http.StatusBadRequest)
		return
	}

	page, pageSize := h.getPagination(r)

	resp, err := h.service.ListComments(r.Context(), postID, page, pageSize)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	utils.SuccessResponse(w, resp, http.StatusOK)
}

func (h *Handler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commentID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteComment(r.Context(), commentID, userID); err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	utils.MessageResponse(w, "Comment deleted successfully", http.StatusOK)
}

func (h *Handler) LikeComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := accounts.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commentID, err := h.pathID(r, "id")
	if err != nil {
		utils.ErrorResponse(w, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	result, err := h.service.ToggleCommentLike(r.Context(), commentID, userID)
	if err != nil {
		h.writeServiceError(w, err, http.StatusInternalServerError)
		return
	}

	status := http.StatusOK
	if result.Liked {
		status = http.StatusCreated
	}
	utils.MessageResponse(w, result.Message, status)
}

func (h *Handler) pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func (h *Handler) getPagination(r *http.Request) (int, int) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}

// writeServiceError maps sentinel errors to HTTP status; everything else
// gets the handler's fallback status
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback int) {
	switch {
	case errors.Is(err, ErrPostNotFound):
		utils.ErrorResponse(w, "Post not found", http.StatusNotFound)
	case errors.Is(err, ErrCommentNotFound):
		utils.ErrorResponse(w, "Comment not found", http.StatusNotFound)
	case errors.Is(err, ErrNotAuthorized):
		utils.ErrorResponse(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrEmptyContent), errors.Is(err, ErrParentMismatch):
		utils.ErrorResponse(w, err.Error(), http.StatusBadRequest)
	case fallback == http.StatusInternalServerError:
		utils.ErrorResponse(w, "Internal server error", fallback)
	default:
		utils.ErrorResponse(w, err.Error(), fallback)
	}
}
