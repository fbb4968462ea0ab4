package report

import (
	"time"

	"go-inspect/internal/features/checklist"
	"go-inspect/internal/features/machine"
	"go-inspect/internal/features/user"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Status of a report, derived from the finalization timestamp. There is no
// stored status field; FinishedAt is the single source of truth.
type Status string

const (
	StatusInProcess Status = "in_process"
	StatusFinalized Status = "finalized"
)

// Report is one inspection run of a machine against a checklist template.
// The template reference is frozen at creation; template edits do not
// rewrite the report, but completion checks always read the current version.
type Report struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	OwnerID     primitive.ObjectID `json:"owner_id" bson:"owner_id"`
	MachineID   primitive.ObjectID `json:"machine_id" bson:"machine_id"`
	ChecklistID primitive.ObjectID `json:"checklist_id" bson:"checklist_id"`
	Name        string             `json:"name,omitempty" bson:"name,omitempty"`
	CallRef     string             `json:"call_ref,omitempty" bson:"call_ref,omitempty"`
	Comments    string             `json:"comments,omitempty" bson:"comments,omitempty"`
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	FinishedAt  *time.Time         `json:"finished_at,omitempty" bson:"finished_at,omitempty"`
}

// Finalized reports accept no further mutation.
func (r *Report) Finalized() bool {
	return r.FinishedAt != nil
}

func (r *Report) Status() Status {
	if r.Finalized() {
		return StatusFinalized
	}
	return StatusInProcess
}

// ReportDetail is the recorded outcome for one checklist item within one
// report. At most one detail exists per (report, item) pair.
type ReportDetail struct {
	ID           primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ReportID     primitive.ObjectID `json:"report_id" bson:"report_id"`
	ItemID       primitive.ObjectID `json:"item_id" bson:"item_id"`
	StateID      primitive.ObjectID `json:"state_id" bson:"state_id"`
	InternalNote string             `json:"internal_note,omitempty" bson:"internal_note,omitempty"`
	CustomerNote string             `json:"customer_note,omitempty" bson:"customer_note,omitempty"`
}

type CreateReportInput struct {
	MachineID   string `json:"machine_id"`
	ChecklistID string `json:"checklist_id"`
	Name        string `json:"name,omitempty"`
	CallRef     string `json:"call_ref,omitempty"`
	Comments    string `json:"comments,omitempty"`
}

// ReportPatch carries only the fields present in an update request. The
// finalization timestamp is never patchable.
type ReportPatch struct {
	Name     *string `json:"name,omitempty"`
	CallRef  *string `json:"call_ref,omitempty"`
	Comments *string `json:"comments,omitempty"`
}

type DetailInput struct {
	ReportID     string `json:"report_id"`
	ItemID       string `json:"item_id"`
	StateID      string `json:"state_id"`
	InternalNote string `json:"internal_note,omitempty"`
	CustomerNote string `json:"customer_note,omitempty"`
}

type DetailPatch struct {
	StateID      *string `json:"state_id,omitempty"`
	InternalNote *string `json:"internal_note,omitempty"`
	CustomerNote *string `json:"customer_note,omitempty"`
}

// BatchDetailEntry is one entry of a batch submission.
type BatchDetailEntry struct {
	ItemID       string `json:"item_id"`
	StateID      string `json:"state_id"`
	InternalNote string `json:"internal_note,omitempty"`
	CustomerNote string `json:"customer_note,omitempty"`
}

// BatchResult reports how many entries were written. Entries with a dangling
// item or state reference are skipped, not fatal.
type BatchResult struct {
	Processed int            `json:"processed"`
	Total     int            `json:"total"`
	Details   []ReportDetail `json:"details"`
}

// DetailWithNames is a detail joined with its item and state display names.
type DetailWithNames struct {
	ID           primitive.ObjectID `json:"id"`
	ReportID     primitive.ObjectID `json:"report_id"`
	ItemID       primitive.ObjectID `json:"item_id"`
	ItemName     string             `json:"item_name"`
	StateID      primitive.ObjectID `json:"state_id"`
	StateName    string             `json:"state_name"`
	InternalNote string             `json:"internal_note,omitempty"`
	CustomerNote string             `json:"customer_note,omitempty"`
}

// DetailGroup is one template group with the details recorded for its items,
// in template item order. Groups without details still appear, with an empty
// item list.
type DetailGroup struct {
	GroupName string            `json:"group_name"`
	Items     []DetailWithNames `json:"items"`
}

type GroupedDetails struct {
	ReportID primitive.ObjectID `json:"report_id"`
	Groups   []DetailGroup      `json:"groups"`
}

// ReportWithRelations is a report hydrated for display and PDF export.
type ReportWithRelations struct {
	Report          `bson:",inline"`
	Machine         *machine.Machine     `json:"machine,omitempty" bson:"-"`
	MachineTypeName string               `json:"machine_type_name,omitempty" bson:"-"`
	Owner           *user.User           `json:"owner,omitempty" bson:"-"`
	Checklist       *checklist.Checklist `json:"checklist,omitempty" bson:"-"`
	Details         []ReportDetail       `json:"details" bson:"-"`
}

// ReportRow is the summarized listing shape for the reports table.
type ReportRow struct {
	ID           primitive.ObjectID `json:"id"`
	CreatedAt    time.Time          `json:"created_at"`
	FinishedAt   *time.Time         `json:"finished_at,omitempty"`
	MachineID    primitive.ObjectID `json:"machine_id"`
	MachineType  string             `json:"machine_type"`
	SerialNumber string             `json:"serial_number,omitempty"`
	Name         string             `json:"name,omitempty"`
	CallRef      string             `json:"call_ref,omitempty"`
}

// ListFilter narrows the report listing.
type ListFilter struct {
	OwnerID       string
	MachineID     string
	MachineTypeID string
	FromDate      *time.Time
	ToDate        *time.Time
	Status        Status
}
