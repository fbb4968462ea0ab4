package machinetype

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MachineType classifies machines and scopes possible inspection states
// and checklist templates.
type MachineType struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name        string             `json:"name" bson:"name"`
	Description string             `json:"description,omitempty" bson:"description,omitempty"`
}

type CreateMachineTypeInput struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

type MachineTypePatch struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}
