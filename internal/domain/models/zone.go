// internal/domain/models/zone.go
package models

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Zone is a geographic region. (City, Province) is unique.
type Zone struct {
	ID              primitive.ObjectID `bson:"_id" json:"id"`
	City            string             `bson:"city" json:"city"`
	LocalNameOfCity string             `bson:"local_name_of_city" json:"local_name_of_city"`
	Province        string             `bson:"province" json:"province"`
}

// String renders the zone as "City(Local)/Province".
func (z Zone) String() string {
	return fmt.Sprintf("%s(%s)/%s", z.City, z.LocalNameOfCity, z.Province)
}
