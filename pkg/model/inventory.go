package model

import "time"

// InventoryObject is the registry view shared by rooms and cabins.
type InventoryObject struct {
	Target
	Title         string `json:"title"`
	Capacity      int    `json:"capacity"`
	Category      string `json:"category,omitempty"`
	Beds          int    `json:"beds"`
	PriceWeekdays int    `json:"price_weekdays"`
	PriceWeekend  int    `json:"price_weekend"`
}

type Room struct {
	ID            int64     `json:"id" bson:"_id"`
	Title         string    `json:"title" bson:"title" validate:"required,min=1,max=120"`
	Category      string    `json:"category,omitempty" bson:"category,omitempty" validate:"omitempty,max=60"`
	Rooms         int       `json:"rooms" bson:"rooms" validate:"required,min=1,max=20"`
	Area          float64   `json:"area,omitempty" bson:"area,omitempty" validate:"omitempty,gt=0"`
	Beds          int       `json:"beds" bson:"beds" validate:"required,min=1,max=20"`
	TV            bool      `json:"tv" bson:"tv"`
	Capacity      *int      `json:"capacity" bson:"capacity" validate:"omitempty,min=1,max=50"`
	PriceWeekdays int       `json:"price_weekdays" bson:"price_weekdays" validate:"min=0"`
	PriceWeekend  int       `json:"price_weekend" bson:"price_weekend" validate:"min=0"`
	Images        []string  `json:"images" bson:"images" validate:"omitempty,max=30,dive,url"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

// EffectiveCapacity falls back to the bed count when no capacity is set.
func (r *Room) EffectiveCapacity() int {
	if r.Capacity != nil && *r.Capacity > 0 {
		return *r.Capacity
	}
	return r.Beds
}

func (r *Room) Object() InventoryObject {
	return InventoryObject{
		Target:        RoomTarget(r.ID),
		Title:         r.Title,
		Capacity:      r.EffectiveCapacity(),
		Category:      r.Category,
		Beds:          r.Beds,
		PriceWeekdays: r.PriceWeekdays,
		PriceWeekend:  r.PriceWeekend,
	}
}

type Cabin struct {
	ID            int64     `json:"id" bson:"_id"`
	Title         string    `json:"title" bson:"title" validate:"required,min=1,max=120"`
	Description   string    `json:"description,omitempty" bson:"description,omitempty" validate:"omitempty,max=4000"`
	Rooms         int       `json:"rooms" bson:"rooms" validate:"required,min=1,max=20"`
	Floors        int       `json:"floors" bson:"floors" validate:"required,min=1,max=5"`
	Beds          int       `json:"beds" bson:"beds" validate:"required,min=1,max=30"`
	Category      string    `json:"category,omitempty" bson:"category,omitempty" validate:"omitempty,max=60"`
	PriceWeekdays int       `json:"price_weekdays" bson:"price_weekdays" validate:"min=0"`
	PriceWeekend  int       `json:"price_weekend" bson:"price_weekend" validate:"min=0"`
	Pool          bool      `json:"pool" bson:"pool"`
	Images        []string  `json:"images" bson:"images" validate:"omitempty,max=30,dive,url"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}

func (c *Cabin) EffectiveCapacity() int {
	return c.Beds
}

func (c *Cabin) Object() InventoryObject {
	return InventoryObject{
		Target:        CabinTarget(c.ID),
		Title:         c.Title,
		Capacity:      c.EffectiveCapacity(),
		Category:      c.Category,
		Beds:          c.Beds,
		PriceWeekdays: c.PriceWeekdays,
		PriceWeekend:  c.PriceWeekend,
	}
}

// GuestGroup is one party in a search request.
type GuestGroup struct {
	Adults   int `json:"adults" validate:"min=0,max=20"`
	Children int `json:"children" validate:"min=0,max=20"`
}

type SearchRequest struct {
	ObjectType string       `json:"object_type" validate:"required,object_type"`
	CheckIn    time.Time    `json:"check_in" validate:"required"`
	CheckOut   time.Time    `json:"check_out" validate:"required"`
	Guests     []GuestGroup `json:"guests" validate:"required,min=1,max=10,dive"`
}

// TotalGuests sums adults and children over all groups.
func (r *SearchRequest) TotalGuests() int {
	total := 0
	for _, g := range r.Guests {
		total += g.Adults + g.Children
	}
	return total
}
