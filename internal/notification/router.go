package notification

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/google/uuid"
)

type Router struct {
	service *Service
}

func NewRouter(service *Service) *Router {
	return &Router{service: service}
}

// RegisterRoutes attaches the notification HTTP surface to the mux.
func (nr *Router) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/users/{userId}/notifications", nr.HandleListForUser)
	mux.HandleFunc("GET /api/v1/users/{userId}/notifications/unread-count", nr.HandleUnreadCount)
	mux.HandleFunc("POST /api/v1/notifications/{notificationId}/read", nr.HandleMarkAsRead)
}

// HandleListForUser handles GET /api/v1/users/{userId}/notifications
// Optional query params: unread, offset, limit
func (nr *Router) HandleListForUser(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid userId: %v", err), http.StatusBadRequest)
		return
	}

	unreadOnly := r.URL.Query().Get("unread") == "true"

	offset, limit := 0, 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil {
			http.Error(w, "invalid 'offset' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		offset = parsed
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			http.Error(w, "invalid 'limit' query parameter, must be an integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	notifications, err := nr.service.ListForUser(r.Context(), userID, unreadOnly, offset, limit)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to list notifications: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(notifications); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleUnreadCount handles GET /api/v1/users/{userId}/notifications/unread-count
func (nr *Router) HandleUnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid userId: %v", err), http.StatusBadRequest)
		return
	}

	count, err := nr.service.UnreadCount(r.Context(), userID)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to count unread notifications: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]int64{"unreadCount": count}); err != nil {
		http.Error(w, fmt.Sprintf("failed to encode response: %v", err), http.StatusInternalServerError)
		return
	}
}

// HandleMarkAsRead handles POST /api/v1/notifications/{notificationId}/read
func (nr *Router) HandleMarkAsRead(w http.ResponseWriter, r *http.Request) {
	notificationID, err := uuid.Parse(r.PathValue("notificationId"))
	if err != nil {
		http.Error(w, fmt.Sprintf("invalid notificationId: %v", err), http.StatusBadRequest)
		return
	}

	if err := nr.service.MarkAsRead(r.Context(), notificationID); err != nil {
		if errors.Is(err, ErrNotificationNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, fmt.Sprintf("failed to mark notification as read: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
