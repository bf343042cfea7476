package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/Bukenyae/medical-rentals-sub002/internal/service"
)

type NotificationHandler struct {
	noteSvc service.NotificationService
}

func NewNotificationHandler(noteSvc service.NotificationService) *NotificationHandler {
	return &NotificationHandler{noteSvc: noteSvc}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	caller := callerFrom(r)
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	notes, total, err := h.noteSvc.GetNotifications(r.Context(), caller.ID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": notes,
		"total":         total,
	})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid notification id"})
		return
	}
	if err := h.noteSvc.MarkAsRead(r.Context(), callerFrom(r).ID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
