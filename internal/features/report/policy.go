package report

import (
	"go-inspect/internal/features/user"
)

// Access rules for reports. Mechanics only reach their own reports.
// Administrators see everything and can delete anything, but report
// content stays editable by its owner alone.

func CanViewReport(u *user.User, r *Report) bool {
	if u == nil {
		return false
	}
	if u.IsAdministrator() {
		return true
	}
	return r.OwnerID == u.ID
}

// CanMutateReport covers report edits, detail writes and finalization.
// Owner only; administrators may view and delete but not edit content.
// Whether the report is still mutable (not finalized) is a separate check.
func CanMutateReport(u *user.User, r *Report) bool {
	if u == nil {
		return false
	}
	return r.OwnerID == u.ID
}

// CanDeleteReport allows owners to discard their own in-process work and
// administrators to remove any report regardless of state.
func CanDeleteReport(u *user.User, r *Report) bool {
	if u == nil {
		return false
	}
	if u.IsAdministrator() {
		return true
	}
	return r.OwnerID == u.ID && !r.Finalized()
}
