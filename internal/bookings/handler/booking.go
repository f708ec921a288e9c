package handler

import (
	"net/http"

	"resort/internal/bookings/service"
	apperrors "resort/pkg/errors"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/middleware"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

// actor is only missing when a route was registered without RequireActor.
func (h *BookingHandler) actor(w http.ResponseWriter, r *http.Request, handler string) (model.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, r, handler, apperrors.Unauthorized("Not authenticated"))
	}
	return actor, ok
}

func (h *BookingHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SearchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Search", err)
		return
	}

	objects, err := h.service.SearchAvailable(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "Search", err)
		return
	}

	if err := httputil.WriteSuccess(w, objects); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write success response", "handler", "Search", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "Create")
	if !ok {
		return
	}

	var req model.BookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	booking, err := h.service.Create(r.Context(), &req, actor)
	if err != nil {
		h.writeError(w, r, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := h.actor(w, r, "ListMine")
	if !ok {
		return
	}

	bookings, err := h.service.ListForUser(r.Context(), actor)
	if err != nil {
		h.writeError(w, r, "ListMine", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write success response", "handler", "ListMine", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	bookings, total, err := h.service.ListAll(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, total, limit, offset); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "UpdateStatus")
	if !ok {
		return
	}

	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "UpdateStatus", err)
		return
	}

	var update model.BookingStatusUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, r, "UpdateStatus", err)
		return
	}

	booking, err := h.service.TransitionStatus(r.Context(), id, &update, actor)
	if err != nil {
		h.writeError(w, r, "UpdateStatus", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write success response", "handler", "UpdateStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := h.actor(w, r, "Delete")
	if !ok {
		return
	}

	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "Delete", err)
		return
	}

	if err := h.service.Delete(r.Context(), id, actor); err != nil {
		h.writeError(w, r, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/search", h.Search)

	router.POST("/api/v1/bookings", middleware.RequireActor(h.Create, h.log))
	router.GET("/api/v1/bookings/my", middleware.RequireActor(h.ListMine, h.log))
	router.DELETE("/api/v1/bookings/:id", middleware.RequireActor(h.Delete, h.log))

	router.GET("/api/v1/bookings", middleware.RequireAdmin(h.GetAll, h.log))
	router.PATCH("/api/v1/bookings/:id/status", middleware.RequireAdmin(h.UpdateStatus, h.log))
}
