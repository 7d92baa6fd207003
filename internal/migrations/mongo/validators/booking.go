package validators

import "go.mongodb.org/mongo-driver/bson"

var requesterSchema = bson.M{
	"bsonType": "object",
	"required": []string{"user_id", "name", "email"},
	"properties": bson.M{
		"user_id": bson.M{
			"bsonType":  "string",
			"minLength": 1,
			"maxLength": 100,
		},
		"name": bson.M{
			"bsonType":  "string",
			"minLength": 2,
			"maxLength": 100,
		},
		"email": bson.M{
			"bsonType": "string",
		},
	},
}

var equipmentRequestSchema = bson.M{
	"bsonType": "array",
	"items": bson.M{
		"bsonType": "object",
		"required": []string{"equipment_id", "quantity"},
		"properties": bson.M{
			"equipment_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},
			"quantity": bson.M{
				"bsonType": "int",
				"minimum":  1,
			},
		},
	},
}

var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"requester",
			"court_id",
			"date",
			"start_time",
			"end_time",
			"status",
			"created_at",
		},
		"additionalProperties": true,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": "objectId",
			},

			"requester": requesterSchema,

			"court_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"date": bson.M{
				"bsonType": "date",
			},

			"start_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"end_time": bson.M{
				"bsonType": "string",
				"pattern":  "^([01][0-9]|2[0-3]):[0-5][0-9]$",
			},

			"equipment": equipmentRequestSchema,

			"coach_id": bson.M{
				"bsonType":  "string",
				"minLength": 24,
				"maxLength": 24,
			},

			"total_price": bson.M{
				"bsonType": []string{"double", "int", "long", "decimal"},
				"minimum":  0,
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					"confirmed",
					"cancelled",
				},
			},

			"created_at": bson.M{
				"bsonType": "date",
			},
		},
	},
}
