package handler

import (
	"context"
	"net/http"

	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/middleware"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type HistoryReader interface {
	ForBooking(ctx context.Context, bookingID int64) ([]*model.BookingEvent, error)
}

type HistoryHandler struct {
	history HistoryReader
	log     *logger.Logger
}

func NewHistoryHandler(history HistoryReader, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		history: history,
		log:     log,
	}
}

func (h *HistoryHandler) GetByBooking(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	events, err := h.history.ForBooking(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := httputil.WriteSuccess(w, events); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write success response", "handler", "GetByBooking", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HistoryHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", "GetByBooking", "operation", "WriteError", "error", writeErr)
	}
}

func (h *HistoryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/audit/bookings/:id", middleware.RequireAdmin(h.GetByBooking, h.log))
}
