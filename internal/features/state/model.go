package state

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PossibleState is an allowed inspection outcome ("OK", "Needs repair"),
// scoped to one machine type.
type PossibleState struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	MachineTypeID primitive.ObjectID `json:"machine_type_id" bson:"machine_type_id"`
}

type CreateStateInput struct {
	Name          string `json:"name"`
	MachineTypeID string `json:"machine_type_id"`
}

type StatePatch struct {
	Name *string `json:"name,omitempty"`
}
