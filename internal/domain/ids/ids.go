// Package ids bridges MongoDB ObjectID identifiers to the string form the
// API exposes. All format validation lives here so that business logic
// never inspects raw hex.
package ids

import (
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParseObjectID converts a 24-character hex string to an ObjectID.
func ParseObjectID(value string) (primitive.ObjectID, error) {
	value = strings.TrimSpace(value)
	oid, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("parse object id %q: %w", value, err)
	}
	return oid, nil
}

// Validate reports whether value is a well-formed ObjectID hex string.
func Validate(value string) error {
	_, err := ParseObjectID(value)
	return err
}
