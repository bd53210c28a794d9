// internal/domain/models/tag.go
package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Tag is an interest topic shared by accounts and studies. Title is unique.
type Tag struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Title string             `bson:"title" json:"title"`
}
