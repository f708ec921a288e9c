package validator

import (
	"testing"

	"resort/pkg/logger"
	"resort/pkg/model"
)

func TestValidateRegister(t *testing.T) {
	v := NewUserValidator(logger.Discard())
	valid := func() model.RegisterRequest {
		return model.RegisterRequest{Email: "guest@example.com", Password: "pinewood7", FirstName: "Ivan", LastName: "Petrov"}
	}

	tests := []struct {
		name    string
		mutate  func(r *model.RegisterRequest)
		wantErr bool
	}{
		{"valid", func(*model.RegisterRequest) {}, false},
		{"admin role", func(r *model.RegisterRequest) { r.Role = "admin" }, false},
		{"unknown role", func(r *model.RegisterRequest) { r.Role = "owner" }, true},
		{"bad email", func(r *model.RegisterRequest) { r.Email = "guest" }, true},
		{"short password", func(r *model.RegisterRequest) { r.Password = "a1" }, true},
		{"password without digit", func(r *model.RegisterRequest) { r.Password = "pinewoods" }, true},
		{"password with padding", func(r *model.RegisterRequest) { r.Password = " pinewood7" }, true},
		{"missing first name", func(r *model.RegisterRequest) { r.FirstName = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid()
			tt.mutate(&req)
			if err := v.ValidateRegister(&req); (err != nil) != tt.wantErr {
				t.Errorf("ValidateRegister() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateUpdate(t *testing.T) {
	v := NewUserValidator(logger.Discard())
	name, weak, role := "Anna", "password", "admin"

	if err := v.ValidateUpdate(&model.UserUpdate{}); err == nil {
		t.Error("empty update accepted")
	}
	if err := v.ValidateUpdate(&model.UserUpdate{FirstName: &name, Role: &role}); err != nil {
		t.Errorf("valid update rejected: %v", err)
	}
	if err := v.ValidateUpdate(&model.UserUpdate{Password: &weak}); err == nil {
		t.Error("weak password accepted")
	}
}
