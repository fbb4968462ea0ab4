package machine

import (
	"go-inspect/internal/features/machinetype"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Machine status values. A machine referenced by reports is deactivated on
// delete instead of removed.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Machine is a physical unit inspections are run against. Its lifecycle is
// independent from checklist templates.
type Machine struct {
	ID            primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	MachineTypeID primitive.ObjectID `json:"machine_type_id" bson:"machine_type_id"`
	Client        string             `json:"client" bson:"client"`
	SerialNumber  string             `json:"serial_number,omitempty" bson:"serial_number,omitempty"`
	FleetNumber   string             `json:"fleet_number,omitempty" bson:"fleet_number,omitempty"`
	PlateNumber   string             `json:"plate_number,omitempty" bson:"plate_number,omitempty"`
	Hours         *float64           `json:"hours,omitempty" bson:"hours,omitempty"`
	Mileage       *float64           `json:"mileage,omitempty" bson:"mileage,omitempty"`
	Zone          string             `json:"zone,omitempty" bson:"zone,omitempty"`
	Capacity      string             `json:"capacity,omitempty" bson:"capacity,omitempty"`
	Status        string             `json:"status,omitempty" bson:"status,omitempty"`
}

// MachineWithType is a machine hydrated with its type for display.
type MachineWithType struct {
	Machine     `bson:",inline"`
	MachineType *machinetype.MachineType `json:"machine_type,omitempty" bson:"-"`
}

type CreateMachineInput struct {
	MachineTypeID string   `json:"machine_type_id"`
	Client        string   `json:"client"`
	SerialNumber  string   `json:"serial_number,omitempty"`
	FleetNumber   string   `json:"fleet_number,omitempty"`
	PlateNumber   string   `json:"plate_number,omitempty"`
	Hours         *float64 `json:"hours,omitempty"`
	Mileage       *float64 `json:"mileage,omitempty"`
	Zone          string   `json:"zone,omitempty"`
	Capacity      string   `json:"capacity,omitempty"`
}

type MachinePatch struct {
	MachineTypeID *string  `json:"machine_type_id,omitempty"`
	Client        *string  `json:"client,omitempty"`
	SerialNumber  *string  `json:"serial_number,omitempty"`
	FleetNumber   *string  `json:"fleet_number,omitempty"`
	PlateNumber   *string  `json:"plate_number,omitempty"`
	Hours         *float64 `json:"hours,omitempty"`
	Mileage       *float64 `json:"mileage,omitempty"`
	Zone          *string  `json:"zone,omitempty"`
	Capacity      *string  `json:"capacity,omitempty"`
}
