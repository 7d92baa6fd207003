package handler

import (
	"encoding/json"
	"net/http"

	"courtbook/internal/waitlist/service"
	httputil "courtbook/pkg/http"
	"courtbook/pkg/logger"
	"courtbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type WaitlistHandler struct {
	service service.WaitlistService
	log     *logger.Logger
}

func NewWaitlistHandler(service service.WaitlistService, log *logger.Logger) *WaitlistHandler {
	return &WaitlistHandler{
		service: service,
		log:     log,
	}
}

func (h *WaitlistHandler) Join(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var entry model.WaitlistEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		})
		return
	}

	if err := h.service.Join(r.Context(), &entry); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, entry)
}

func (h *WaitlistHandler) Leave(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Leave(r.Context(), ps.ByName("id")); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *WaitlistHandler) GetByUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	entries, err := h.service.GetByUser(r.Context(), ps.ByName("userId"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, entries)
}

func (h *WaitlistHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/waitlist", h.Join)
	router.DELETE("/api/v1/waitlist/id/:id", h.Leave)
	router.GET("/api/v1/waitlist/user/:userId", h.GetByUser)
}
