package report

import (
	"context"
	"errors"
	"time"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/checklist"
	"go-inspect/internal/features/machine"
	"go-inspect/internal/features/machinetype"
	"go-inspect/internal/features/state"
	"go-inspect/internal/features/user"
	"go-inspect/pkg/utils"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type ReportService interface {
	Create(ctx context.Context, actor *user.User, input CreateReportInput) (*Report, error)
	Get(ctx context.Context, actor *user.User, id string) (*Report, error)
	GetWithRelations(ctx context.Context, actor *user.User, id string) (*ReportWithRelations, error)
	List(ctx context.Context, actor *user.User, filter ListFilter, skip, limit int64) ([]ReportRow, int64, error)
	Update(ctx context.Context, actor *user.User, id string, patch ReportPatch) (*Report, error)
	Finalize(ctx context.Context, actor *user.User, id string) (*Report, error)
	Delete(ctx context.Context, actor *user.User, id string) error

	AddDetail(ctx context.Context, actor *user.User, input DetailInput) (*ReportDetail, error)
	AddDetailsBatch(ctx context.Context, actor *user.User, reportID string, entries []BatchDetailEntry) (*BatchResult, error)
	UpdateDetail(ctx context.Context, actor *user.User, detailID string, patch DetailPatch) (*ReportDetail, error)
	DeleteDetail(ctx context.Context, actor *user.User, detailID string) error

	GroupedDetails(ctx context.Context, actor *user.User, reportID string) (*GroupedDetails, error)
	ExportPDF(ctx context.Context, actor *user.User, id string) (*PDFExport, error)
	ExportXLSX(ctx context.Context, actor *user.User, filter ListFilter) ([]byte, string, error)
}

type ReportServiceImpl struct {
	Repo       ReportRepository
	Machines   machine.MachineRepository
	Types      machinetype.MachineTypeRepository
	Checklists checklist.ChecklistRepository
	States     state.StateRepository
	Users      user.UserRepository
	PDF        Renderer
	Log        *zap.Logger
}

func NewReportService(
	repo ReportRepository,
	machines machine.MachineRepository,
	types machinetype.MachineTypeRepository,
	checklists checklist.ChecklistRepository,
	states state.StateRepository,
	users user.UserRepository,
	pdf Renderer,
	log *zap.Logger,
) ReportService {
	return &ReportServiceImpl{
		Repo:       repo,
		Machines:   machines,
		Types:      types,
		Checklists: checklists,
		States:     states,
		Users:      users,
		PDF:        pdf,
		Log:        log,
	}
}

func (s *ReportServiceImpl) Create(ctx context.Context, actor *user.User, input CreateReportInput) (*Report, error) {
	m, err := s.Machines.FindByID(ctx, input.MachineID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("machine %s not found", input.MachineID)
		}
		return nil, apperr.Store(err, "failed to load machine")
	}

	cl, err := s.Checklists.FindByID(ctx, input.ChecklistID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("checklist %s not found", input.ChecklistID)
		}
		return nil, apperr.Store(err, "failed to load checklist")
	}
	if !cl.Active {
		return nil, apperr.Validation("checklist %s is not active", input.ChecklistID)
	}
	if cl.MachineTypeID != m.MachineTypeID {
		return nil, apperr.Validation("checklist does not apply to this machine type")
	}

	now := time.Now().UTC()
	name := input.Name
	if name == "" {
		name = utils.SynthesizeReportName(input.CallRef, m.SerialNumber, now)
	}

	rep := &Report{
		OwnerID:     actor.ID,
		MachineID:   m.ID,
		ChecklistID: cl.ID,
		Name:        name,
		CallRef:     input.CallRef,
		Comments:    input.Comments,
		CreatedAt:   now,
	}
	if err := s.Repo.Create(ctx, rep); err != nil {
		return nil, apperr.Store(err, "failed to create report")
	}

	s.Log.Info("report created",
		zap.String("reportId", rep.ID.Hex()),
		zap.String("userId", actor.ID.Hex()),
	)
	return rep, nil
}

func (s *ReportServiceImpl) Get(ctx context.Context, actor *user.User, id string) (*Report, error) {
	rep, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanViewReport(actor, rep) {
		return nil, apperr.Forbidden("you do not have access to this report")
	}
	return rep, nil
}

func (s *ReportServiceImpl) GetWithRelations(ctx context.Context, actor *user.User, id string) (*ReportWithRelations, error) {
	rep, err := s.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	out := &ReportWithRelations{Report: *rep}

	if m, err := s.Machines.FindByID(ctx, rep.MachineID.Hex()); err == nil {
		out.Machine = m
		if mt, err := s.Types.FindByID(ctx, m.MachineTypeID.Hex()); err == nil {
			out.MachineTypeName = mt.Name
		}
	}
	if owner, err := s.Users.FindByID(ctx, rep.OwnerID.Hex()); err == nil {
		out.Owner = owner
	}
	if cl, err := s.Checklists.FindByID(ctx, rep.ChecklistID.Hex()); err == nil {
		out.Checklist = cl
	}

	details, err := s.Repo.ListDetails(ctx, rep.ID)
	if err != nil {
		return nil, apperr.Store(err, "failed to load report details")
	}
	out.Details = details
	return out, nil
}

func (s *ReportServiceImpl) List(ctx context.Context, actor *user.User, filter ListFilter, skip, limit int64) ([]ReportRow, int64, error) {
	query := bson.M{}

	// Mechanics only ever see their own reports, whatever the filter says.
	if !actor.IsAdministrator() {
		query["owner_id"] = actor.ID
	} else if filter.OwnerID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.OwnerID)
		if err != nil {
			return nil, 0, apperr.Validation("invalid owner id %q", filter.OwnerID)
		}
		query["owner_id"] = oid
	}

	if filter.MachineID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.MachineID)
		if err != nil {
			return nil, 0, apperr.Validation("invalid machine id %q", filter.MachineID)
		}
		query["machine_id"] = oid
	} else if filter.MachineTypeID != "" {
		ids, err := s.machineIDsOfType(ctx, filter.MachineTypeID)
		if err != nil {
			return nil, 0, err
		}
		query["machine_id"] = bson.M{"$in": ids}
	}

	if filter.FromDate != nil || filter.ToDate != nil {
		created := bson.M{}
		if filter.FromDate != nil {
			created["$gte"] = *filter.FromDate
		}
		if filter.ToDate != nil {
			created["$lte"] = *filter.ToDate
		}
		query["created_at"] = created
	}

	switch filter.Status {
	case StatusFinalized:
		query["finished_at"] = bson.M{"$ne": nil}
	case StatusInProcess:
		query["finished_at"] = nil
	}

	reports, err := s.Repo.List(ctx, query, skip, limit)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to list reports")
	}
	total, err := s.Repo.Count(ctx, query)
	if err != nil {
		return nil, 0, apperr.Store(err, "failed to count reports")
	}

	rows, err := s.hydrateRows(ctx, reports)
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *ReportServiceImpl) machineIDsOfType(ctx context.Context, machineTypeID string) ([]primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(machineTypeID)
	if err != nil {
		return nil, apperr.Validation("invalid machine type id %q", machineTypeID)
	}
	machines, err := s.Machines.List(ctx, bson.M{"machine_type_id": oid}, 0, 0)
	if err != nil {
		return nil, apperr.Store(err, "failed to list machines by type")
	}
	ids := make([]primitive.ObjectID, 0, len(machines))
	for _, m := range machines {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

func (s *ReportServiceImpl) hydrateRows(ctx context.Context, reports []Report) ([]ReportRow, error) {
	machineIDs := make([]primitive.ObjectID, 0, len(reports))
	seen := make(map[primitive.ObjectID]bool, len(reports))
	for _, rep := range reports {
		if !seen[rep.MachineID] {
			seen[rep.MachineID] = true
			machineIDs = append(machineIDs, rep.MachineID)
		}
	}

	machines, err := s.Machines.FindByIDs(ctx, machineIDs)
	if err != nil {
		return nil, apperr.Store(err, "failed to resolve machines")
	}

	typeIDs := make([]primitive.ObjectID, 0, len(machines))
	seenTypes := make(map[primitive.ObjectID]bool, len(machines))
	for _, m := range machines {
		if !seenTypes[m.MachineTypeID] {
			seenTypes[m.MachineTypeID] = true
			typeIDs = append(typeIDs, m.MachineTypeID)
		}
	}
	types, err := s.Types.FindByIDs(ctx, typeIDs)
	if err != nil {
		return nil, apperr.Store(err, "failed to resolve machine types")
	}

	rows := make([]ReportRow, 0, len(reports))
	for _, rep := range reports {
		row := ReportRow{
			ID:         rep.ID,
			CreatedAt:  rep.CreatedAt,
			FinishedAt: rep.FinishedAt,
			MachineID:  rep.MachineID,
			Name:       rep.Name,
			CallRef:    rep.CallRef,
		}
		if m, ok := machines[rep.MachineID]; ok {
			row.SerialNumber = m.SerialNumber
			if mt, ok := types[m.MachineTypeID]; ok {
				row.MachineType = mt.Name
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *ReportServiceImpl) Update(ctx context.Context, actor *user.User, id string, patch ReportPatch) (*Report, error) {
	rep, err := s.mutableReport(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.CallRef != nil {
		set["call_ref"] = *patch.CallRef
	}
	if patch.Comments != nil {
		set["comments"] = *patch.Comments
	}
	if len(set) == 0 {
		return rep, nil
	}

	updated, err := s.Repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("report %s not found", id)
		}
		return nil, apperr.Store(err, "failed to update report")
	}
	return updated, nil
}

// Finalize closes a report after verifying that every mandatory item of the
// checklist's current version has a recorded detail. The closing write is
// conditional on the report still being open, so two concurrent finalize
// calls cannot both succeed.
func (s *ReportServiceImpl) Finalize(ctx context.Context, actor *user.User, id string) (*Report, error) {
	rep, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutateReport(actor, rep) {
		return nil, apperr.Forbidden("you do not have access to this report")
	}
	if rep.Finalized() {
		return nil, apperr.InvalidState("report is already finalized")
	}

	missing, err := s.missingMandatory(ctx, rep)
	if err != nil {
		return nil, err
	}
	if missing > 0 {
		return nil, apperr.IncompleteChecklist(missing)
	}

	finalized, err := s.Repo.SetFinishedAt(ctx, rep.ID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// The conditional write matched nothing: either the report is
			// gone or someone else finalized it first.
			if _, reread := s.loadReport(ctx, id); reread != nil {
				return nil, reread
			}
			return nil, apperr.Conflict("report was finalized concurrently")
		}
		return nil, apperr.Store(err, "failed to finalize report")
	}

	s.Log.Info("report finalized",
		zap.String("reportId", finalized.ID.Hex()),
		zap.String("userId", actor.ID.Hex()),
	)
	return finalized, nil
}

func (s *ReportServiceImpl) missingMandatory(ctx context.Context, rep *Report) (int, error) {
	groups, err := s.Checklists.ListGroups(ctx, rep.ChecklistID)
	if err != nil {
		return 0, apperr.Store(err, "failed to load checklist groups")
	}
	groupIDs := make([]primitive.ObjectID, 0, len(groups))
	for _, g := range groups {
		groupIDs = append(groupIDs, g.ID)
	}

	items, err := s.Checklists.ListItemsByGroups(ctx, groupIDs)
	if err != nil {
		return 0, apperr.Store(err, "failed to load checklist items")
	}

	details, err := s.Repo.ListDetails(ctx, rep.ID)
	if err != nil {
		return 0, apperr.Store(err, "failed to load report details")
	}
	filled := make(map[primitive.ObjectID]bool, len(details))
	for _, d := range details {
		filled[d.ItemID] = true
	}

	missing := 0
	for _, it := range items {
		if it.Mandatory && !filled[it.ID] {
			missing++
		}
	}
	return missing, nil
}

func (s *ReportServiceImpl) Delete(ctx context.Context, actor *user.User, id string) error {
	rep, err := s.loadReport(ctx, id)
	if err != nil {
		return err
	}
	if !CanDeleteReport(actor, rep) {
		return apperr.Forbidden("only administrators can delete reports")
	}

	if err := s.Repo.DeleteDetailsByReport(ctx, rep.ID); err != nil {
		return apperr.Store(err, "failed to delete report details")
	}
	if err := s.Repo.Delete(ctx, rep.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("report %s not found", id)
		}
		return apperr.Store(err, "failed to delete report")
	}

	s.Log.Info("report deleted",
		zap.String("reportId", rep.ID.Hex()),
		zap.String("userId", actor.ID.Hex()),
	)
	return nil
}

func (s *ReportServiceImpl) AddDetail(ctx context.Context, actor *user.User, input DetailInput) (*ReportDetail, error) {
	rep, err := s.mutableReport(ctx, actor, input.ReportID)
	if err != nil {
		return nil, err
	}

	item, err := s.Checklists.FindItem(ctx, input.ItemID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("checklist item %s not found", input.ItemID)
		}
		return nil, apperr.Store(err, "failed to load checklist item")
	}
	st, err := s.States.FindByID(ctx, input.StateID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("state %s not found", input.StateID)
		}
		return nil, apperr.Store(err, "failed to load state")
	}

	detail := &ReportDetail{
		ReportID:     rep.ID,
		ItemID:       item.ID,
		StateID:      st.ID,
		InternalNote: input.InternalNote,
		CustomerNote: input.CustomerNote,
	}
	out, err := s.Repo.UpsertDetail(ctx, detail)
	if err != nil {
		return nil, apperr.Store(err, "failed to save report detail")
	}
	return out, nil
}

// AddDetailsBatch validates the whole batch up front with two set lookups,
// skips entries with dangling references, and writes the rest in one bulk
// upsert. The result reports processed versus submitted counts.
func (s *ReportServiceImpl) AddDetailsBatch(ctx context.Context, actor *user.User, reportID string, entries []BatchDetailEntry) (*BatchResult, error) {
	rep, err := s.mutableReport(ctx, actor, reportID)
	if err != nil {
		return nil, err
	}

	result := &BatchResult{Total: len(entries)}
	if len(entries) == 0 {
		return result, nil
	}

	itemIDs := make([]primitive.ObjectID, 0, len(entries))
	stateIDs := make([]primitive.ObjectID, 0, len(entries))
	for _, e := range entries {
		if oid, err := primitive.ObjectIDFromHex(e.ItemID); err == nil {
			itemIDs = append(itemIDs, oid)
		}
		if oid, err := primitive.ObjectIDFromHex(e.StateID); err == nil {
			stateIDs = append(stateIDs, oid)
		}
	}

	knownItems, err := s.Checklists.ExistingItemIDs(ctx, itemIDs)
	if err != nil {
		return nil, apperr.Store(err, "failed to validate checklist items")
	}
	knownStates, err := s.States.FindByIDs(ctx, stateIDs)
	if err != nil {
		return nil, apperr.Store(err, "failed to validate states")
	}

	valid := make([]ReportDetail, 0, len(entries))
	validItems := make(map[primitive.ObjectID]bool, len(entries))
	for _, e := range entries {
		itemID, err := primitive.ObjectIDFromHex(e.ItemID)
		if err != nil || !knownItems[itemID] {
			continue
		}
		stateID, err := primitive.ObjectIDFromHex(e.StateID)
		if err != nil {
			continue
		}
		if _, ok := knownStates[stateID]; !ok {
			continue
		}
		valid = append(valid, ReportDetail{
			ReportID:     rep.ID,
			ItemID:       itemID,
			StateID:      stateID,
			InternalNote: e.InternalNote,
			CustomerNote: e.CustomerNote,
		})
		validItems[itemID] = true
	}

	if len(valid) > 0 {
		if _, err := s.Repo.BulkUpsertDetails(ctx, rep.ID, valid); err != nil {
			return nil, apperr.Store(err, "failed to save report details")
		}
	}
	result.Processed = len(valid)

	details, err := s.Repo.ListDetails(ctx, rep.ID)
	if err != nil {
		return nil, apperr.Store(err, "failed to load report details")
	}
	for _, d := range details {
		if validItems[d.ItemID] {
			result.Details = append(result.Details, d)
		}
	}
	return result, nil
}

func (s *ReportServiceImpl) UpdateDetail(ctx context.Context, actor *user.User, detailID string, patch DetailPatch) (*ReportDetail, error) {
	detail, err := s.loadDetail(ctx, detailID)
	if err != nil {
		return nil, err
	}
	if _, err := s.mutableReport(ctx, actor, detail.ReportID.Hex()); err != nil {
		return nil, err
	}

	set := bson.M{}
	if patch.StateID != nil {
		st, err := s.States.FindByID(ctx, *patch.StateID)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.NotFound("state %s not found", *patch.StateID)
			}
			return nil, apperr.Store(err, "failed to load state")
		}
		set["state_id"] = st.ID
	}
	if patch.InternalNote != nil {
		set["internal_note"] = *patch.InternalNote
	}
	if patch.CustomerNote != nil {
		set["customer_note"] = *patch.CustomerNote
	}
	if len(set) == 0 {
		return detail, nil
	}

	updated, err := s.Repo.UpdateDetail(ctx, detail.ID, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("report detail %s not found", detailID)
		}
		return nil, apperr.Store(err, "failed to update report detail")
	}
	return updated, nil
}

func (s *ReportServiceImpl) DeleteDetail(ctx context.Context, actor *user.User, detailID string) error {
	detail, err := s.loadDetail(ctx, detailID)
	if err != nil {
		return err
	}
	// Administrators can prune details even from a finalized report.
	if actor.IsAdministrator() {
		if _, err := s.loadReport(ctx, detail.ReportID.Hex()); err != nil {
			return err
		}
	} else if _, err := s.mutableReport(ctx, actor, detail.ReportID.Hex()); err != nil {
		return err
	}

	if err := s.Repo.DeleteDetail(ctx, detail.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("report detail %s not found", detailID)
		}
		return apperr.Store(err, "failed to delete report detail")
	}
	return nil
}

func (s *ReportServiceImpl) loadReport(ctx context.Context, id string) (*Report, error) {
	rep, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("report %s not found", id)
		}
		return nil, apperr.Store(err, "failed to load report")
	}
	return rep, nil
}

func (s *ReportServiceImpl) loadDetail(ctx context.Context, id string) (*ReportDetail, error) {
	detail, err := s.Repo.FindDetail(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("report detail %s not found", id)
		}
		return nil, apperr.Store(err, "failed to load report detail")
	}
	return detail, nil
}

// mutableReport loads a report and rejects callers without mutate access or
// an already finalized report.
func (s *ReportServiceImpl) mutableReport(ctx context.Context, actor *user.User, id string) (*Report, error) {
	rep, err := s.loadReport(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMutateReport(actor, rep) {
		return nil, apperr.Forbidden("you do not have access to this report")
	}
	if rep.Finalized() {
		return nil, apperr.InvalidState("report is finalized and cannot be modified")
	}
	return rep, nil
}
