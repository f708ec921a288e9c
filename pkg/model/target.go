package model

import (
	"errors"
	"fmt"
	"strings"
)

type ObjectType string

const (
	ObjectTypeRoom  ObjectType = "room"
	ObjectTypeCabin ObjectType = "cabin"
)

var ErrUnknownObjectType = errors.New("unknown object type")

func ParseObjectType(s string) (ObjectType, error) {
	switch ObjectType(strings.ToLower(strings.TrimSpace(s))) {
	case ObjectTypeRoom:
		return ObjectTypeRoom, nil
	case ObjectTypeCabin:
		return ObjectTypeCabin, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownObjectType, s)
}

func (t ObjectType) Valid() bool {
	return t == ObjectTypeRoom || t == ObjectTypeCabin
}

func (t ObjectType) String() string {
	return string(t)
}

// Target identifies exactly one bookable object. Room ids and cabin ids are
// separate sequences, so the type is part of the identity.
type Target struct {
	Type ObjectType `json:"object_type"`
	ID   int64      `json:"object_id"`
}

func RoomTarget(id int64) Target {
	return Target{Type: ObjectTypeRoom, ID: id}
}

func CabinTarget(id int64) Target {
	return Target{Type: ObjectTypeCabin, ID: id}
}

// Key is the serialization key for per-object locking, e.g. "room:12".
func (t Target) Key() string {
	return fmt.Sprintf("%s:%d", t.Type, t.ID)
}

func (t Target) String() string {
	return t.Key()
}

func (t Target) Valid() bool {
	return t.Type.Valid() && t.ID > 0
}
