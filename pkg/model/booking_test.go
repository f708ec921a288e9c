package model

import (
	"errors"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, time.July, d, 14, 0, 0, 0, time.UTC)
}

func TestDateRange_Overlaps(t *testing.T) {
	base := DateRange{Start: day(10), End: day(12)}

	tests := []struct {
		name  string
		other DateRange
		want  bool
	}{
		{"identical", DateRange{day(10), day(12)}, true},
		{"starts inside", DateRange{day(11), day(14)}, true},
		{"ends inside", DateRange{day(8), day(11)}, true},
		{"contains", DateRange{day(9), day(13)}, true},
		{"touches at end", DateRange{day(12), day(14)}, false},
		{"touches at start", DateRange{day(8), day(10)}, false},
		{"disjoint before", DateRange{day(1), day(3)}, false},
		{"disjoint after", DateRange{day(20), day(22)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() is not symmetric for %s", tt.name)
			}
		})
	}
}

func TestDateRange_Validate(t *testing.T) {
	if _, err := NewDateRange(day(10), day(10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("empty range: err = %v, want ErrInvalidRange", err)
	}
	if _, err := NewDateRange(day(12), day(10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("reversed range: err = %v, want ErrInvalidRange", err)
	}
	if _, err := NewDateRange(time.Time{}, day(10)); !errors.Is(err, ErrInvalidRange) {
		t.Errorf("zero start: err = %v, want ErrInvalidRange", err)
	}
	if _, err := NewDateRange(day(10), day(11)); err != nil {
		t.Errorf("one night: unexpected error %v", err)
	}
}

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to BookingStatus
		want     bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusPending, true},
		{BookingStatusConfirmed, BookingStatusConfirmed, true},
		{BookingStatusCancelled, BookingStatusCancelled, false},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusPending, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusPending, BookingStatus("archived"), false},
		{BookingStatus("archived"), BookingStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBookingStatus_IsActive(t *testing.T) {
	if !BookingStatusPending.IsActive() || !BookingStatusConfirmed.IsActive() {
		t.Error("pending and confirmed must be active")
	}
	if BookingStatusCancelled.IsActive() {
		t.Error("cancelled must not be active")
	}
	if got := ActiveStatusStrings(); len(got) != 2 || got[0] != "pending" || got[1] != "confirmed" {
		t.Errorf("ActiveStatusStrings() = %v", got)
	}
}

func TestBooking_SetTarget(t *testing.T) {
	var b Booking
	b.SetTarget(RoomTarget(12))
	if err := b.CheckTarget(); err != nil {
		t.Fatalf("room target: %v", err)
	}
	if b.RoomID == nil || *b.RoomID != 12 || b.CabinID != nil {
		t.Fatalf("room columns not set correctly: room=%v cabin=%v", b.RoomID, b.CabinID)
	}

	b.SetTarget(CabinTarget(3))
	if err := b.CheckTarget(); err != nil {
		t.Fatalf("cabin target: %v", err)
	}
	if b.RoomID != nil || b.CabinID == nil || *b.CabinID != 3 {
		t.Fatalf("switching target must clear room_id")
	}
	if b.Target() != CabinTarget(3) {
		t.Errorf("Target() = %v", b.Target())
	}
}

func TestBooking_CheckTarget_Inconsistent(t *testing.T) {
	room, cabin := int64(1), int64(2)

	tests := []struct {
		name    string
		booking Booking
	}{
		{"both columns set", Booking{ObjectType: ObjectTypeRoom, ObjectID: 1, RoomID: &room, CabinID: &cabin}},
		{"room type with cabin column", Booking{ObjectType: ObjectTypeRoom, ObjectID: 2, CabinID: &cabin}},
		{"mismatched id", Booking{ObjectType: ObjectTypeCabin, ObjectID: 9, CabinID: &cabin}},
		{"neither column", Booking{ObjectType: ObjectTypeCabin, ObjectID: 2}},
		{"unknown type", Booking{ObjectType: "villa", ObjectID: 1, RoomID: &room}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.booking.CheckTarget(); err == nil {
				t.Error("CheckTarget() should fail")
			}
		})
	}
}

func TestParseObjectType(t *testing.T) {
	if got, err := ParseObjectType(" Room "); err != nil || got != ObjectTypeRoom {
		t.Errorf("ParseObjectType(room) = %v, %v", got, err)
	}
	if _, err := ParseObjectType("villa"); !errors.Is(err, ErrUnknownObjectType) {
		t.Errorf("ParseObjectType(villa) err = %v", err)
	}
	if RoomTarget(12).Key() != "room:12" {
		t.Errorf("Key() = %s", RoomTarget(12).Key())
	}
	if RoomTarget(1).Key() == CabinTarget(1).Key() {
		t.Error("room and cabin with equal ids must not share a key")
	}
}

func TestEffectiveCapacity(t *testing.T) {
	four, zero := 4, 0
	if got := (&Room{Beds: 2, Capacity: &four}).EffectiveCapacity(); got != 4 {
		t.Errorf("room with capacity = %d, want 4", got)
	}
	if got := (&Room{Beds: 2}).EffectiveCapacity(); got != 2 {
		t.Errorf("room without capacity = %d, want 2", got)
	}
	if got := (&Room{Beds: 3, Capacity: &zero}).EffectiveCapacity(); got != 3 {
		t.Errorf("room with zero capacity = %d, want 3", got)
	}
	if got := (&Cabin{Beds: 6}).EffectiveCapacity(); got != 6 {
		t.Errorf("cabin = %d, want 6", got)
	}
}

func TestSearchRequest_TotalGuests(t *testing.T) {
	req := SearchRequest{Guests: []GuestGroup{{Adults: 2, Children: 1}, {Adults: 1}}}
	if got := req.TotalGuests(); got != 4 {
		t.Errorf("TotalGuests() = %d, want 4", got)
	}
}

func TestActor_CanManage(t *testing.T) {
	owner := int64(5)
	client := Actor{UserID: 5, Role: RoleClient}
	other := Actor{UserID: 6, Role: RoleClient}
	admin := Actor{UserID: 1, Role: RoleAdmin}

	if !client.CanManage(&owner) {
		t.Error("owner should manage own booking")
	}
	if other.CanManage(&owner) {
		t.Error("other client must not manage the booking")
	}
	if other.CanManage(nil) {
		t.Error("detached booking is admin-only")
	}
	if !admin.CanManage(nil) {
		t.Error("admin manages everything")
	}
	if (Actor{Role: "ADMIN"}).IsAdmin() {
		t.Error("role comparison must be exact")
	}
}
