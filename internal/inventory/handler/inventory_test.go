package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resort/internal/inventory/service"
	apperrors "resort/pkg/errors"
	"resort/pkg/logger"
	"resort/pkg/middleware"
	"resort/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// stubInventoryService overrides the calls exercised here; anything else
// panics through the nil embedded interface.
type stubInventoryService struct {
	service.InventoryService

	rooms       map[int64]*model.Room
	deleteErr   error
	createdRoom *model.Room
}

func (s *stubInventoryService) GetRoom(_ context.Context, id int64) (*model.Room, error) {
	room, ok := s.rooms[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Room", "x")
	}
	return room, nil
}

func (s *stubInventoryService) ListRooms(_ context.Context, limit int, offset int64) ([]*model.Room, int64, error) {
	out := []*model.Room{}
	for _, r := range s.rooms {
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

func (s *stubInventoryService) CreateRoom(_ context.Context, room *model.Room) error {
	room.ID = 99
	s.createdRoom = room
	return nil
}

func (s *stubInventoryService) DeleteRoom(context.Context, int64) error {
	return s.deleteErr
}

func (s *stubInventoryService) DeleteCabin(context.Context, int64) error {
	return s.deleteErr
}

func serveInventory(svc *stubInventoryService, method, path, body string, actor *model.Actor) *httptest.ResponseRecorder {
	router := httprouter.New()
	NewInventoryHandler(svc, logger.Discard()).RegisterRoutes(router)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(middleware.WithActor(req.Context(), *actor))
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestInventoryReadsArePublic(t *testing.T) {
	svc := &stubInventoryService{rooms: map[int64]*model.Room{3: {ID: 3, Title: "Lake view", Beds: 2}}}

	w := serveInventory(svc, http.MethodGet, "/api/v1/rooms/3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp struct {
		Data model.Room `json:"data"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Title != "Lake view" {
		t.Errorf("title = %q", resp.Data.Title)
	}

	if w := serveInventory(svc, http.MethodGet, "/api/v1/rooms/4", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("missing room status = %d, want 404", w.Code)
	}
	if w := serveInventory(svc, http.MethodGet, "/api/v1/rooms/abc", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d, want 400", w.Code)
	}
	if w := serveInventory(svc, http.MethodGet, "/api/v1/rooms?limit=5", "", nil); w.Code != http.StatusOK {
		t.Errorf("list status = %d", w.Code)
	}
}

func TestInventoryWritesRequireAdmin(t *testing.T) {
	client := model.Actor{UserID: 5, Role: model.RoleClient}
	admin := model.Actor{UserID: 1, Role: model.RoleAdmin}
	body := `{"title":"Lake view","rooms":1,"beds":2}`

	svc := &stubInventoryService{}
	if w := serveInventory(svc, http.MethodPost, "/api/v1/rooms", body, nil); w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous status = %d, want 401", w.Code)
	}
	if w := serveInventory(svc, http.MethodPost, "/api/v1/rooms", body, &client); w.Code != http.StatusForbidden {
		t.Errorf("client status = %d, want 403", w.Code)
	}
	if svc.createdRoom != nil {
		t.Fatal("service reached without admin role")
	}

	w := serveInventory(svc, http.MethodPost, "/api/v1/rooms", body, &admin)
	if w.Code != http.StatusCreated {
		t.Fatalf("admin status = %d: %s", w.Code, w.Body.String())
	}
	if svc.createdRoom == nil || svc.createdRoom.Beds != 2 {
		t.Errorf("created room = %+v", svc.createdRoom)
	}
}

func TestInventoryDeleteConflict(t *testing.T) {
	admin := model.Actor{UserID: 1, Role: model.RoleAdmin}
	svc := &stubInventoryService{deleteErr: apperrors.Conflict("Cabin has bookings and cannot be deleted")}

	w := serveInventory(svc, http.MethodDelete, "/api/v1/cabins/2", "", &admin)
	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}

	svc.deleteErr = nil
	if w := serveInventory(svc, http.MethodDelete, "/api/v1/rooms/2", "", &admin); w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}
