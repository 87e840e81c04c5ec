// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the catalog.
// The card and picker treat it as an immutable snapshot.
type Exercise struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Category  string             `bson:"category" json:"category"`                       // e.g., "Strength", "Cardio", "Mobility"
	Equipment string             `bson:"equipment,omitempty" json:"equipment,omitempty"` // e.g., "Kettlebell", "None"
	DemoURL   string             `bson:"demoUrl,omitempty" json:"demoUrl,omitempty"`     // Optional link to a demo video

	CreatedBy primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"` // Coach who added it (zero for seeded entries)
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// HasDemo reports whether the exercise carries a demo reference.
func (e *Exercise) HasDemo() bool {
	return e.DemoURL != ""
}
