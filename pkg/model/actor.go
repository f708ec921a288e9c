package model

// Actor is the authenticated caller on whose behalf an operation runs.
type Actor struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role"`
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanManage reports whether the actor may act on a resource owned by userID.
func (a Actor) CanManage(ownerID *int64) bool {
	if a.IsAdmin() {
		return true
	}
	return ownerID != nil && *ownerID == a.UserID
}
