package validators

import "go.mongodb.org/mongo-driver/bson"

var UserValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{"_id", "email", "password_hash", "role", "created_at"},
		"properties": bson.M{
			"_id":           bson.M{"bsonType": integer, "minimum": 1},
			"email":         bson.M{"bsonType": "string", "minLength": 3, "maxLength": 254},
			"password_hash": bson.M{"bsonType": "string", "minLength": 1},
			"first_name":    bson.M{"bsonType": "string", "maxLength": 100},
			"last_name":     bson.M{"bsonType": "string", "maxLength": 100},
			"role":          bson.M{"bsonType": "string", "enum": []string{"client", "admin"}},
			"created_at":    bson.M{"bsonType": "date"},
		},
	},
}
