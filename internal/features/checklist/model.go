package checklist

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checklist is a reusable inspection template for one machine type. Reports
// reference a template by id; edits to the template do not rewrite existing
// reports, but validation always reads the current version.
type Checklist struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name          string             `json:"name" bson:"name"`
	MachineTypeID primitive.ObjectID `json:"machine_type_id" bson:"machine_type_id"`
	Version       string             `json:"version" bson:"version"`
	Active        bool               `json:"active" bson:"active"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at" bson:"updated_at"`
}

// Group is an ordered section of a checklist.
type Group struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ChecklistID primitive.ObjectID `json:"checklist_id" bson:"checklist_id"`
	Name        string             `json:"name" bson:"name"`
	Rank        int                `json:"rank" bson:"rank"`
}

// Item is one inspection point within a group. Rank uniqueness within a
// group is advisory, not enforced atomically.
type Item struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	GroupID   primitive.ObjectID `json:"group_id" bson:"group_id"`
	Name      string             `json:"name" bson:"name"`
	Rank      int                `json:"rank" bson:"rank"`
	Mandatory bool               `json:"mandatory" bson:"mandatory"`
}

type GroupWithItems struct {
	Group `bson:",inline"`
	Items []Item `json:"items" bson:"-"`
}

type ChecklistWithGroups struct {
	Checklist `bson:",inline"`
	Groups    []GroupWithItems `json:"groups" bson:"-"`
}

type CreateChecklistInput struct {
	Name          string `json:"name"`
	MachineTypeID string `json:"machine_type_id"`
	Version       string `json:"version"`
	Active        *bool  `json:"active,omitempty"`
}

type ChecklistPatch struct {
	Name    *string `json:"name,omitempty"`
	Version *string `json:"version,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

type CreateGroupInput struct {
	ChecklistID string `json:"checklist_id"`
	Name        string `json:"name"`
	Rank        int    `json:"rank"`
}

type GroupPatch struct {
	Name *string `json:"name,omitempty"`
	Rank *int    `json:"rank,omitempty"`
}

type CreateItemInput struct {
	GroupID   string `json:"group_id"`
	Name      string `json:"name"`
	Rank      int    `json:"rank"`
	Mandatory *bool  `json:"mandatory,omitempty"`
}

type ItemPatch struct {
	Name      *string `json:"name,omitempty"`
	Rank      *int    `json:"rank,omitempty"`
	Mandatory *bool   `json:"mandatory,omitempty"`
}
