package validators

import (
	"sharedcal/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
)

const DatePattern = `^\d{4}-\d{2}-\d{2}$`

// BookingValidator leaves status optional so rows written before status
// existed still load and get normalized.
var BookingValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType": "object",
		"required": []string{
			"_id",
			"position",
			"name",
			"purpose",
			"date",
			"start",
			"end",
		},
		"additionalProperties": false,

		"properties": bson.M{
			"_id": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},

			"position": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  0,
			},

			"name": bson.M{
				"bsonType":  "string",
				"maxLength": 100,
			},

			"purpose": bson.M{
				"bsonType":  "string",
				"maxLength": 500,
			},

			"date": bson.M{
				"bsonType": "string",
				"pattern":  DatePattern,
			},

			"start": bson.M{
				"bsonType": "string",
				"pattern":  model.ClockPattern.String(),
			},

			"end": bson.M{
				"bsonType": "string",
				"pattern":  model.ClockPattern.String(),
			},

			"status": bson.M{
				"bsonType": "string",
				"enum": []string{
					string(model.StatusBooked),
					string(model.StatusCheckedIn),
					string(model.StatusCheckedOut),
				},
			},
		},
	},
}
