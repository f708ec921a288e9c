package validators

import "go.mongodb.org/mongo-driver/bson"

var integer = bson.A{"int", "long"}

// BookingValidator also checks what $jsonSchema cannot: the room/cabin
// reference matches object_type and object_id, and start_date < end_date.
var BookingValidator = bson.M{
	"$and": bson.A{
		bson.M{"$jsonSchema": bookingSchema},
		bson.M{"$or": bson.A{
			bson.M{"object_type": "room", "room_id": bson.M{"$type": integer}, "cabin_id": nil},
			bson.M{"object_type": "cabin", "cabin_id": bson.M{"$type": integer}, "room_id": nil},
		}},
		bson.M{"$expr": bson.M{"$and": bson.A{
			bson.M{"$lt": bson.A{"$start_date", "$end_date"}},
			bson.M{"$eq": bson.A{"$object_id", bson.M{"$ifNull": bson.A{"$room_id", "$cabin_id"}}}},
		}}},
	},
}

var bookingSchema = bson.M{
	"bsonType": "object",
	"required": []string{
		"_id",
		"object_type",
		"object_id",
		"last_name",
		"first_name",
		"phone",
		"email",
		"guests",
		"status",
		"start_date",
		"end_date",
		"created_at",
		"updated_at",
	},
	"additionalProperties": true,

	"properties": bson.M{
		"_id": bson.M{
			"bsonType": integer,
			"minimum":  1,
		},

		"object_type": bson.M{
			"bsonType": "string",
			"enum":     []string{"room", "cabin"},
		},

		"object_id": bson.M{
			"bsonType": integer,
			"minimum":  1,
		},

		"room_id": bson.M{
			"bsonType": bson.A{"int", "long", "null"},
		},

		"cabin_id": bson.M{
			"bsonType": bson.A{"int", "long", "null"},
		},

		"user_id": bson.M{
			"bsonType": bson.A{"int", "long", "null"},
		},

		"last_name": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 100,
		},

		"first_name": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 100,
		},

		"phone": bson.M{
			"bsonType":  "string",
			"minLength": 5,
			"maxLength": 32,
		},

		"email": bson.M{
			"bsonType":  "string",
			"minLength": 3,
			"maxLength": 254,
		},

		"guests": bson.M{
			"bsonType": integer,
			"minimum":  1,
			"maximum":  50,
		},

		"status": bson.M{
			"bsonType": "string",
			"enum": []string{
				"pending",
				"confirmed",
				"cancelled",
			},
		},

		"start_date": bson.M{
			"bsonType": "date",
		},

		"end_date": bson.M{
			"bsonType": "date",
		},

		"created_at": bson.M{
			"bsonType": "date",
		},

		"updated_at": bson.M{
			"bsonType": "date",
		},
	},
}
