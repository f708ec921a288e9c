package handler

import (
	"net/http"

	"resort/internal/inventory/service"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/middleware"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type InventoryHandler struct {
	service service.InventoryService
	log     *logger.Logger
}

func NewInventoryHandler(service service.InventoryService, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{
		service: service,
		log:     log,
	}
}

func (h *InventoryHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *InventoryHandler) writeOK(w http.ResponseWriter, r *http.Request, handler string, status int, data any) {
	var err error
	if status == http.StatusCreated {
		err = httputil.WriteCreated(w, data)
	} else {
		err = httputil.WriteSuccess(w, data)
	}
	if err != nil {
		h.log.FromContext(r.Context()).Error("failed to write response", "handler", handler, "operation", "Write", "error", err)
	}
}

// ──────────────── Rooms ────────────────

func (h *InventoryHandler) CreateRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var room model.Room
	if err := httputil.DecodeJSON(r, &room); err != nil {
		h.writeError(w, r, "CreateRoom", err)
		return
	}
	if err := h.service.CreateRoom(r.Context(), &room); err != nil {
		h.writeError(w, r, "CreateRoom", err)
		return
	}
	h.writeOK(w, r, "CreateRoom", http.StatusCreated, room)
}

func (h *InventoryHandler) GetRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "GetRoom", err)
		return
	}
	room, err := h.service.GetRoom(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "GetRoom", err)
		return
	}
	h.writeOK(w, r, "GetRoom", http.StatusOK, room)
}

func (h *InventoryHandler) ListRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "ListRooms", err)
		return
	}
	rooms, total, err := h.service.ListRooms(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, "ListRooms", err)
		return
	}
	if err := httputil.WritePaginated(w, rooms, total, limit, offset); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write paginated response", "handler", "ListRooms", "operation", "WritePaginated", "error", err)
	}
}

func (h *InventoryHandler) UpdateRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "UpdateRoom", err)
		return
	}
	var room model.Room
	if err := httputil.DecodeJSON(r, &room); err != nil {
		h.writeError(w, r, "UpdateRoom", err)
		return
	}
	if err := h.service.UpdateRoom(r.Context(), id, &room); err != nil {
		h.writeError(w, r, "UpdateRoom", err)
		return
	}
	h.writeOK(w, r, "UpdateRoom", http.StatusOK, room)
}

func (h *InventoryHandler) DeleteRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "DeleteRoom", err)
		return
	}
	if err := h.service.DeleteRoom(r.Context(), id); err != nil {
		h.writeError(w, r, "DeleteRoom", err)
		return
	}
	httputil.WriteNoContent(w)
}

// ──────────────── Cabins ────────────────

func (h *InventoryHandler) CreateCabin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var cabin model.Cabin
	if err := httputil.DecodeJSON(r, &cabin); err != nil {
		h.writeError(w, r, "CreateCabin", err)
		return
	}
	if err := h.service.CreateCabin(r.Context(), &cabin); err != nil {
		h.writeError(w, r, "CreateCabin", err)
		return
	}
	h.writeOK(w, r, "CreateCabin", http.StatusCreated, cabin)
}

func (h *InventoryHandler) GetCabin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "GetCabin", err)
		return
	}
	cabin, err := h.service.GetCabin(r.Context(), id)
	if err != nil {
		h.writeError(w, r, "GetCabin", err)
		return
	}
	h.writeOK(w, r, "GetCabin", http.StatusOK, cabin)
}

func (h *InventoryHandler) ListCabins(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "ListCabins", err)
		return
	}
	cabins, total, err := h.service.ListCabins(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, "ListCabins", err)
		return
	}
	if err := httputil.WritePaginated(w, cabins, total, limit, offset); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write paginated response", "handler", "ListCabins", "operation", "WritePaginated", "error", err)
	}
}

func (h *InventoryHandler) UpdateCabin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "UpdateCabin", err)
		return
	}
	var cabin model.Cabin
	if err := httputil.DecodeJSON(r, &cabin); err != nil {
		h.writeError(w, r, "UpdateCabin", err)
		return
	}
	if err := h.service.UpdateCabin(r.Context(), id, &cabin); err != nil {
		h.writeError(w, r, "UpdateCabin", err)
		return
	}
	h.writeOK(w, r, "UpdateCabin", http.StatusOK, cabin)
}

func (h *InventoryHandler) DeleteCabin(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "DeleteCabin", err)
		return
	}
	if err := h.service.DeleteCabin(r.Context(), id); err != nil {
		h.writeError(w, r, "DeleteCabin", err)
		return
	}
	httputil.WriteNoContent(w)
}

func (h *InventoryHandler) RegisterRoutes(router *httprouter.Router) {
	admin := func(handle httprouter.Handle) httprouter.Handle {
		return middleware.RequireAdmin(handle, h.log)
	}

	router.GET("/api/v1/rooms", h.ListRooms)
	router.GET("/api/v1/rooms/:id", h.GetRoom)
	router.POST("/api/v1/rooms", admin(h.CreateRoom))
	router.PUT("/api/v1/rooms/:id", admin(h.UpdateRoom))
	router.DELETE("/api/v1/rooms/:id", admin(h.DeleteRoom))

	router.GET("/api/v1/cabins", h.ListCabins)
	router.GET("/api/v1/cabins/:id", h.GetCabin)
	router.POST("/api/v1/cabins", admin(h.CreateCabin))
	router.PUT("/api/v1/cabins/:id", admin(h.UpdateCabin))
	router.DELETE("/api/v1/cabins/:id", admin(h.DeleteCabin))
}
