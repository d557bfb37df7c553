package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// NewID returns a fresh opaque identifier in the 24-char hex form used by every store.
func NewID() string {
	return primitive.NewObjectID().Hex()
}

// IsValidID reports whether id is a well-formed identifier.
func IsValidID(id string) bool {
	_, err := primitive.ObjectIDFromHex(id)
	return err == nil
}
