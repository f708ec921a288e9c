package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "title", "rooms", "beds", "price_weekdays", "price_weekend", "created_at"},
		"properties": bson.M{
			"_id":            bson.M{"bsonType": integer, "minimum": 1},
			"title":          bson.M{"bsonType": "string", "minLength": 1, "maxLength": 120},
			"category":       bson.M{"bsonType": "string", "maxLength": 60},
			"rooms":          bson.M{"bsonType": integer, "minimum": 1, "maximum": 20},
			"area":           bson.M{"bsonType": bson.A{"double", "int", "long"}, "exclusiveMinimum": true, "minimum": 0},
			"beds":           bson.M{"bsonType": integer, "minimum": 1, "maximum": 20},
			"tv":             bson.M{"bsonType": "bool"},
			"capacity":       bson.M{"bsonType": bson.A{"int", "long", "null"}},
			"price_weekdays": bson.M{"bsonType": integer, "minimum": 0},
			"price_weekend":  bson.M{"bsonType": integer, "minimum": 0},
			"images":         bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}},
			"created_at":     bson.M{"bsonType": "date"},
		},
	},
}

var CabinValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "title", "rooms", "floors", "beds", "price_weekdays", "price_weekend", "created_at"},
		"properties": bson.M{
			"_id":            bson.M{"bsonType": integer, "minimum": 1},
			"title":          bson.M{"bsonType": "string", "minLength": 1, "maxLength": 120},
			"description":    bson.M{"bsonType": "string", "maxLength": 4000},
			"rooms":          bson.M{"bsonType": integer, "minimum": 1, "maximum": 20},
			"floors":         bson.M{"bsonType": integer, "minimum": 1, "maximum": 5},
			"beds":           bson.M{"bsonType": integer, "minimum": 1, "maximum": 30},
			"category":       bson.M{"bsonType": "string", "maxLength": 60},
			"price_weekdays": bson.M{"bsonType": integer, "minimum": 0},
			"price_weekend":  bson.M{"bsonType": integer, "minimum": 0},
			"pool":           bson.M{"bsonType": "bool"},
			"images":         bson.M{"bsonType": bson.A{"array", "null"}, "items": bson.M{"bsonType": "string"}},
			"created_at":     bson.M{"bsonType": "date"},
		},
	},
}
