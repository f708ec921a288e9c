package handler

import (
	"net/http"

	"resort/internal/users/service"
	httputil "resort/pkg/http"
	"resort/pkg/logger"
	"resort/pkg/middleware"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, r *http.Request, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.FromContext(r.Context()).Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) writeSuccess(w http.ResponseWriter, r *http.Request, handler string, data any) {
	if err := httputil.WriteSuccess(w, data); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write success response", "handler", handler, "operation", "WriteSuccess", "error", err)
	}
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Register", err)
		return
	}

	var caller *model.Actor
	if actor, ok := middleware.ActorFromContext(r.Context()); ok {
		caller = &actor
	}

	user, err := h.service.Register(r.Context(), &req, caller)
	if err != nil {
		h.writeError(w, r, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, user); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, r, "Login", err)
		return
	}

	token, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeError(w, r, "Login", err)
		return
	}
	h.writeSuccess(w, r, "Login", token)
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, _ := middleware.ActorFromContext(r.Context())
	user, err := h.service.Get(r.Context(), actor.UserID, actor)
	if err != nil {
		h.writeError(w, r, "Me", err)
		return
	}
	h.writeSuccess(w, r, "Me", user)
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	users, total, err := h.service.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, r, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, users, total, limit, offset); err != nil {
		h.log.FromContext(r.Context()).Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}

	actor, _ := middleware.ActorFromContext(r.Context())
	user, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, r, "GetByID", err)
		return
	}
	h.writeSuccess(w, r, "GetByID", user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	var update model.UserUpdate
	if err := httputil.DecodeJSON(r, &update); err != nil {
		h.writeError(w, r, "Update", err)
		return
	}

	actor, _ := middleware.ActorFromContext(r.Context())
	user, err := h.service.Update(r.Context(), id, &update, actor)
	if err != nil {
		h.writeError(w, r, "Update", err)
		return
	}
	h.writeSuccess(w, r, "Update", user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id, err := httputil.ExtractID(ps, "id")
	if err != nil {
		h.writeError(w, r, "Delete", err)
		return
	}

	actor, _ := middleware.ActorFromContext(r.Context())
	if err := h.service.Delete(r.Context(), id, actor); err != nil {
		h.writeError(w, r, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/register", h.Register)
	router.POST("/api/v1/auth/login", h.Login)
	router.GET("/api/v1/auth/me", middleware.RequireActor(h.Me, h.log))

	router.GET("/api/v1/users", middleware.RequireAdmin(h.GetAll, h.log))
	router.GET("/api/v1/users/:id", middleware.RequireActor(h.GetByID, h.log))
	router.PATCH("/api/v1/users/:id", middleware.RequireActor(h.Update, h.log))
	router.DELETE("/api/v1/users/:id", middleware.RequireAdmin(h.Delete, h.log))
}
