package validators

import "go.mongodb.org/mongo-driver/bson"

var BookingLockValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "object_type", "object_id", "version"},
		"properties": bson.M{
			"_id":         bson.M{"bsonType": "string"},
			"object_type": bson.M{"bsonType": "string", "enum": []string{"room", "cabin"}},
			"object_id":   bson.M{"bsonType": integer, "minimum": 1},
			"version":     bson.M{"bsonType": integer, "minimum": 1},
			"claimed_at":  bson.M{"bsonType": "date"},
		},
	},
}

var BookingEventValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "type", "booking_id", "object_type", "object_id", "occurred_at"},
		"properties": bson.M{
			"_id": bson.M{"bsonType": "string", "minLength": 1},
			"type": bson.M{
				"bsonType": "string",
				"enum":     []string{"booking.created", "booking.status_changed", "booking.deleted"},
			},
			"booking_id":  bson.M{"bsonType": integer, "minimum": 1},
			"object_type": bson.M{"bsonType": "string", "enum": []string{"room", "cabin"}},
			"object_id":   bson.M{"bsonType": integer, "minimum": 1},
			"occurred_at": bson.M{"bsonType": "date"},
			"received_at": bson.M{"bsonType": "date"},
		},
	},
}

var CounterValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "value"},
		"properties": bson.M{
			"_id":   bson.M{"bsonType": "string"},
			"value": bson.M{"bsonType": integer, "minimum": 0},
		},
	},
}
