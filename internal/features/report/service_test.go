package report

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/checklist"
	"go-inspect/internal/features/machine"
	"go-inspect/internal/features/machinetype"
	"go-inspect/internal/features/state"
	"go-inspect/internal/features/user"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type mockReportRepo struct {
	reports map[primitive.ObjectID]*Report
	details map[primitive.ObjectID]*ReportDetail

	// When set, SetFinishedAt misses as if another call won the race.
	forceFinalizeMiss bool
	capturedFilter    bson.M
}

func newMockReportRepo() *mockReportRepo {
	return &mockReportRepo{
		reports: map[primitive.ObjectID]*Report{},
		details: map[primitive.ObjectID]*ReportDetail{},
	}
}

func (m *mockReportRepo) Create(ctx context.Context, r *Report) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	cp := *r
	m.reports[r.ID] = &cp
	return nil
}

func (m *mockReportRepo) FindByID(ctx context.Context, id string) (*Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	r, ok := m.reports[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *r
	return &cp, nil
}

func (m *mockReportRepo) List(ctx context.Context, filter bson.M, skip, limit int64) ([]Report, error) {
	m.capturedFilter = filter
	var out []Report
	for _, r := range m.reports {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockReportRepo) Count(ctx context.Context, filter bson.M) (int64, error) {
	return int64(len(m.reports)), nil
}

func (m *mockReportRepo) Update(ctx context.Context, id string, patch bson.M) (*Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	r, ok := m.reports[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if v, ok := patch["name"].(string); ok {
		r.Name = v
	}
	if v, ok := patch["call_ref"].(string); ok {
		r.CallRef = v
	}
	if v, ok := patch["comments"].(string); ok {
		r.Comments = v
	}
	cp := *r
	return &cp, nil
}

func (m *mockReportRepo) SetFinishedAt(ctx context.Context, id primitive.ObjectID, at time.Time) (*Report, error) {
	if m.forceFinalizeMiss {
		return nil, mongo.ErrNoDocuments
	}
	r, ok := m.reports[id]
	if !ok || r.FinishedAt != nil {
		return nil, mongo.ErrNoDocuments
	}
	r.FinishedAt = &at
	cp := *r
	return &cp, nil
}

func (m *mockReportRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := m.reports[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.reports, id)
	return nil
}

func (m *mockReportRepo) FindDetail(ctx context.Context, id string) (*ReportDetail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	d, ok := m.details[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	cp := *d
	return &cp, nil
}

func (m *mockReportRepo) ListDetails(ctx context.Context, reportID primitive.ObjectID) ([]ReportDetail, error) {
	var out []ReportDetail
	for _, d := range m.details {
		if d.ReportID == reportID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *mockReportRepo) UpsertDetail(ctx context.Context, d *ReportDetail) (*ReportDetail, error) {
	for _, existing := range m.details {
		if existing.ReportID == d.ReportID && existing.ItemID == d.ItemID {
			existing.StateID = d.StateID
			existing.InternalNote = d.InternalNote
			existing.CustomerNote = d.CustomerNote
			cp := *existing
			return &cp, nil
		}
	}
	cp := *d
	cp.ID = primitive.NewObjectID()
	m.details[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *mockReportRepo) BulkUpsertDetails(ctx context.Context, reportID primitive.ObjectID, details []ReportDetail) (int, error) {
	for i := range details {
		d := details[i]
		d.ReportID = reportID
		if _, err := m.UpsertDetail(ctx, &d); err != nil {
			return 0, err
		}
	}
	return len(details), nil
}

func (m *mockReportRepo) UpdateDetail(ctx context.Context, id primitive.ObjectID, patch bson.M) (*ReportDetail, error) {
	d, ok := m.details[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	if v, ok := patch["state_id"].(primitive.ObjectID); ok {
		d.StateID = v
	}
	if v, ok := patch["internal_note"].(string); ok {
		d.InternalNote = v
	}
	if v, ok := patch["customer_note"].(string); ok {
		d.CustomerNote = v
	}
	cp := *d
	return &cp, nil
}

func (m *mockReportRepo) DeleteDetail(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := m.details[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.details, id)
	return nil
}

func (m *mockReportRepo) DeleteDetailsByReport(ctx context.Context, reportID primitive.ObjectID) error {
	for id, d := range m.details {
		if d.ReportID == reportID {
			delete(m.details, id)
		}
	}
	return nil
}

func (m *mockReportRepo) MachineInUse(ctx context.Context, machineID string) (bool, error) {
	return false, nil
}
func (m *mockReportRepo) ChecklistInUse(ctx context.Context, checklistID string) (bool, error) {
	return false, nil
}
func (m *mockReportRepo) ItemInUse(ctx context.Context, itemID string) (bool, error) {
	return false, nil
}
func (m *mockReportRepo) StateInUse(ctx context.Context, stateID string) (bool, error) {
	return false, nil
}

type mockChecklistRepo struct {
	checklists map[primitive.ObjectID]*checklist.Checklist
	groups     []checklist.Group
	items      []checklist.Item
}

func (m *mockChecklistRepo) Create(ctx context.Context, cl *checklist.Checklist) error { return nil }
func (m *mockChecklistRepo) FindByID(ctx context.Context, id string) (*checklist.Checklist, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	cl, ok := m.checklists[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return cl, nil
}
func (m *mockChecklistRepo) List(ctx context.Context, filter bson.M, skip, limit int64) ([]checklist.Checklist, error) {
	return nil, nil
}
func (m *mockChecklistRepo) Update(ctx context.Context, id string, patch bson.M) (*checklist.Checklist, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockChecklistRepo) Delete(ctx context.Context, id string) error { return nil }
func (m *mockChecklistRepo) CreateGroup(ctx context.Context, g *checklist.Group) error {
	return nil
}
func (m *mockChecklistRepo) FindGroup(ctx context.Context, id string) (*checklist.Group, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockChecklistRepo) ListGroups(ctx context.Context, checklistID primitive.ObjectID) ([]checklist.Group, error) {
	var out []checklist.Group
	for _, g := range m.groups {
		if g.ChecklistID == checklistID {
			out = append(out, g)
		}
	}
	return out, nil
}
func (m *mockChecklistRepo) UpdateGroup(ctx context.Context, id string, patch bson.M) (*checklist.Group, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockChecklistRepo) DeleteGroup(ctx context.Context, id string) error { return nil }
func (m *mockChecklistRepo) CreateItem(ctx context.Context, it *checklist.Item) error {
	return nil
}
func (m *mockChecklistRepo) FindItem(ctx context.Context, id string) (*checklist.Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	for i := range m.items {
		if m.items[i].ID == oid {
			return &m.items[i], nil
		}
	}
	return nil, mongo.ErrNoDocuments
}
func (m *mockChecklistRepo) ListItems(ctx context.Context, groupID primitive.ObjectID) ([]checklist.Item, error) {
	var out []checklist.Item
	for _, it := range m.items {
		if it.GroupID == groupID {
			out = append(out, it)
		}
	}
	return out, nil
}
func (m *mockChecklistRepo) ListItemsByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]checklist.Item, error) {
	want := map[primitive.ObjectID]bool{}
	for _, id := range groupIDs {
		want[id] = true
	}
	var out []checklist.Item
	for _, it := range m.items {
		if want[it.GroupID] {
			out = append(out, it)
		}
	}
	return out, nil
}
func (m *mockChecklistRepo) ExistingItemIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	known := map[primitive.ObjectID]bool{}
	for _, it := range m.items {
		known[it.ID] = true
	}
	out := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		if known[id] {
			out[id] = true
		}
	}
	return out, nil
}
func (m *mockChecklistRepo) UpdateItem(ctx context.Context, id string, patch bson.M) (*checklist.Item, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockChecklistRepo) DeleteItem(ctx context.Context, id string) error { return nil }
func (m *mockChecklistRepo) DeleteItemsByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	return nil
}

type mockMachineRepo struct {
	machines map[primitive.ObjectID]*machine.Machine
}

func (m *mockMachineRepo) Create(ctx context.Context, mc *machine.Machine) error { return nil }
func (m *mockMachineRepo) FindByID(ctx context.Context, id string) (*machine.Machine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	mc, ok := m.machines[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return mc, nil
}
func (m *mockMachineRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]machine.Machine, error) {
	out := map[primitive.ObjectID]machine.Machine{}
	for _, id := range ids {
		if mc, ok := m.machines[id]; ok {
			out[id] = *mc
		}
	}
	return out, nil
}
func (m *mockMachineRepo) List(ctx context.Context, filter bson.M, skip, limit int64) ([]machine.Machine, error) {
	return nil, nil
}
func (m *mockMachineRepo) Update(ctx context.Context, id string, patch bson.M) (*machine.Machine, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockMachineRepo) Delete(ctx context.Context, id string) error { return nil }
func (m *mockMachineRepo) MachineTypeInUse(ctx context.Context, machineTypeID string) (bool, error) {
	return false, nil
}

type mockTypeRepo struct {
	types map[primitive.ObjectID]*machinetype.MachineType
}

func (m *mockTypeRepo) Create(ctx context.Context, mt *machinetype.MachineType) error { return nil }
func (m *mockTypeRepo) FindByID(ctx context.Context, id string) (*machinetype.MachineType, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	mt, ok := m.types[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return mt, nil
}
func (m *mockTypeRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]machinetype.MachineType, error) {
	out := map[primitive.ObjectID]machinetype.MachineType{}
	for _, id := range ids {
		if mt, ok := m.types[id]; ok {
			out[id] = *mt
		}
	}
	return out, nil
}
func (m *mockTypeRepo) List(ctx context.Context, skip, limit int64) ([]machinetype.MachineType, error) {
	return nil, nil
}
func (m *mockTypeRepo) Update(ctx context.Context, id string, patch bson.M) (*machinetype.MachineType, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockTypeRepo) Delete(ctx context.Context, id string) error { return nil }

type mockStateRepo struct {
	states map[primitive.ObjectID]*state.PossibleState
}

func (m *mockStateRepo) Create(ctx context.Context, st *state.PossibleState) error { return nil }
func (m *mockStateRepo) FindByID(ctx context.Context, id string) (*state.PossibleState, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	st, ok := m.states[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return st, nil
}
func (m *mockStateRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]state.PossibleState, error) {
	out := map[primitive.ObjectID]state.PossibleState{}
	for _, id := range ids {
		if st, ok := m.states[id]; ok {
			out[id] = *st
		}
	}
	return out, nil
}
func (m *mockStateRepo) ListByMachineType(ctx context.Context, machineTypeID primitive.ObjectID) ([]state.PossibleState, error) {
	return nil, nil
}
func (m *mockStateRepo) Update(ctx context.Context, id string, patch bson.M) (*state.PossibleState, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockStateRepo) Delete(ctx context.Context, id string) error { return nil }

type mockUserRepo struct {
	users map[primitive.ObjectID]*user.User
}

func (m *mockUserRepo) Create(ctx context.Context, u *user.User) error { return nil }
func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*user.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}
	u, ok := m.users[oid]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return u, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	return nil, mongo.ErrNoDocuments
}
func (m *mockUserRepo) List(ctx context.Context, skip, limit int64) ([]user.User, error) {
	return nil, nil
}
func (m *mockUserRepo) Update(ctx context.Context, id string, patch bson.M) (*user.User, error) {
	return nil, mongo.ErrNoDocuments
}

// fixture is a consistent in-memory world: one machine type with a machine,
// three states, and a checklist with two groups where "Horn" and "Seals" are
// mandatory and "Lights" is optional.
type fixture struct {
	svc  *ReportServiceImpl
	repo *mockReportRepo

	admin    *user.User
	mechanic *user.User
	other    *user.User

	machine   *machine.Machine
	checklist *checklist.Checklist
	groupA    checklist.Group
	groupB    checklist.Group
	itemSeals checklist.Item
	itemHorn  checklist.Item
	itemLight checklist.Item
	stateOK   *state.PossibleState
	stateBad  *state.PossibleState
}

func newFixture() *fixture {
	typeID := primitive.NewObjectID()
	mt := &machinetype.MachineType{ID: typeID, Name: "Forklift"}

	mc := &machine.Machine{
		ID:            primitive.NewObjectID(),
		MachineTypeID: typeID,
		Client:        "Acme",
		SerialNumber:  "AB/12",
		Status:        machine.StatusActive,
	}

	cl := &checklist.Checklist{
		ID:            primitive.NewObjectID(),
		Name:          "Periodic",
		MachineTypeID: typeID,
		Version:       "1.0",
		Active:        true,
	}
	groupA := checklist.Group{ID: primitive.NewObjectID(), ChecklistID: cl.ID, Name: "Hydraulics", Rank: 1}
	groupB := checklist.Group{ID: primitive.NewObjectID(), ChecklistID: cl.ID, Name: "Safety", Rank: 2}
	itemSeals := checklist.Item{ID: primitive.NewObjectID(), GroupID: groupA.ID, Name: "Seals", Rank: 1, Mandatory: true}
	itemHorn := checklist.Item{ID: primitive.NewObjectID(), GroupID: groupB.ID, Name: "Horn", Rank: 1, Mandatory: true}
	itemLight := checklist.Item{ID: primitive.NewObjectID(), GroupID: groupB.ID, Name: "Lights", Rank: 2, Mandatory: false}

	stateOK := &state.PossibleState{ID: primitive.NewObjectID(), Name: "OK", MachineTypeID: typeID}
	stateBad := &state.PossibleState{ID: primitive.NewObjectID(), Name: "Needs repair", MachineTypeID: typeID}

	admin := &user.User{ID: primitive.NewObjectID(), Role: user.RoleAdministrator, Status: user.StatusActive}
	mechanic := &user.User{ID: primitive.NewObjectID(), Role: user.RoleMechanic, Status: user.StatusActive, FirstName: "Max"}
	other := &user.User{ID: primitive.NewObjectID(), Role: user.RoleMechanic, Status: user.StatusActive}

	repo := newMockReportRepo()
	svc := &ReportServiceImpl{
		Repo: repo,
		Machines: &mockMachineRepo{
			machines: map[primitive.ObjectID]*machine.Machine{mc.ID: mc},
		},
		Types: &mockTypeRepo{
			types: map[primitive.ObjectID]*machinetype.MachineType{typeID: mt},
		},
		Checklists: &mockChecklistRepo{
			checklists: map[primitive.ObjectID]*checklist.Checklist{cl.ID: cl},
			groups:     []checklist.Group{groupA, groupB},
			items:      []checklist.Item{itemSeals, itemHorn, itemLight},
		},
		States: &mockStateRepo{
			states: map[primitive.ObjectID]*state.PossibleState{stateOK.ID: stateOK, stateBad.ID: stateBad},
		},
		Users: &mockUserRepo{
			users: map[primitive.ObjectID]*user.User{admin.ID: admin, mechanic.ID: mechanic, other.ID: other},
		},
		PDF: NewTextRenderer(),
		Log: zap.NewNop(),
	}

	return &fixture{
		svc:       svc,
		repo:      repo,
		admin:     admin,
		mechanic:  mechanic,
		other:     other,
		machine:   mc,
		checklist: cl,
		groupA:    groupA,
		groupB:    groupB,
		itemSeals: itemSeals,
		itemHorn:  itemHorn,
		itemLight: itemLight,
		stateOK:   stateOK,
		stateBad:  stateBad,
	}
}

func (f *fixture) createReport(t *testing.T, owner *user.User) *Report {
	t.Helper()
	rep, err := f.svc.Create(context.Background(), owner, CreateReportInput{
		MachineID:   f.machine.ID.Hex(),
		ChecklistID: f.checklist.ID.Hex(),
		CallRef:     "Aviso#1",
	})
	if err != nil {
		t.Fatalf("create report: %v", err)
	}
	return rep
}

func (f *fixture) fillMandatory(t *testing.T, actor *user.User, rep *Report) {
	t.Helper()
	for _, item := range []checklist.Item{f.itemSeals, f.itemHorn} {
		_, err := f.svc.AddDetail(context.Background(), actor, DetailInput{
			ReportID: rep.ID.Hex(),
			ItemID:   item.ID.Hex(),
			StateID:  f.stateOK.ID.Hex(),
		})
		if err != nil {
			t.Fatalf("add detail for %s: %v", item.Name, err)
		}
	}
}

func TestCreateSynthesizesName(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)

	if !strings.HasPrefix(rep.Name, "Aviso1_AB12_") {
		t.Errorf("expected synthesized name with cleaned tokens, got %q", rep.Name)
	}
	if len(rep.Name) != len("Aviso1_AB12_")+6 {
		t.Errorf("expected six-digit date suffix, got %q", rep.Name)
	}
	if rep.Finalized() {
		t.Error("new report must start in process")
	}
	if rep.Status() != StatusInProcess {
		t.Errorf("expected status %q, got %q", StatusInProcess, rep.Status())
	}
}

func TestCreateRejectsWrongMachineType(t *testing.T) {
	f := newFixture()

	foreign := &checklist.Checklist{
		ID:            primitive.NewObjectID(),
		Name:          "Crane inspection",
		MachineTypeID: primitive.NewObjectID(),
		Active:        true,
	}
	f.svc.Checklists.(*mockChecklistRepo).checklists[foreign.ID] = foreign

	_, err := f.svc.Create(context.Background(), f.mechanic, CreateReportInput{
		MachineID:   f.machine.ID.Hex(),
		ChecklistID: foreign.ID.Hex(),
	})
	if apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestFinalizeRejectsMissingMandatory(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)

	// Only one of the two mandatory items filled.
	_, err := f.svc.AddDetail(context.Background(), f.mechanic, DetailInput{
		ReportID: rep.ID.Hex(),
		ItemID:   f.itemSeals.ID.Hex(),
		StateID:  f.stateOK.ID.Hex(),
	})
	if err != nil {
		t.Fatalf("add detail: %v", err)
	}

	_, err = f.svc.Finalize(context.Background(), f.mechanic, rep.ID.Hex())
	var e *apperr.Error
	if !errors.As(err, &e) || e.Kind != apperr.KindIncompleteChecklist {
		t.Fatalf("expected incomplete checklist error, got %v", err)
	}
	if e.MissingItems != 1 {
		t.Errorf("expected 1 missing item, got %d", e.MissingItems)
	}
}

func TestFinalizeIgnoresOptionalItems(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)
	f.fillMandatory(t, f.mechanic, rep)

	finalized, err := f.svc.Finalize(context.Background(), f.mechanic, rep.ID.Hex())
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if finalized.FinishedAt == nil {
		t.Fatal("expected finalization timestamp")
	}
	if finalized.Status() != StatusFinalized {
		t.Errorf("expected status %q, got %q", StatusFinalized, finalized.Status())
	}
}

func TestFinalizeTwiceRejected(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)
	f.fillMandatory(t, f.mechanic, rep)

	if _, err := f.svc.Finalize(context.Background(), f.mechanic, rep.ID.Hex()); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	_, err := f.svc.Finalize(context.Background(), f.mechanic, rep.ID.Hex())
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestFinalizeConcurrentRaceIsConflict(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)
	f.fillMandatory(t, f.mechanic, rep)

	// Simulate the conditional write missing because another call flipped
	// the timestamp between our read and write.
	f.repo.forceFinalizeMiss = true

	_, err := f.svc.Finalize(context.Background(), f.mechanic, rep.ID.Hex())
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestMutationAfterFinalizeRejected(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)
	f.fillMandatory(t, f.mechanic, rep)
	if _, err := f.svc.Finalize(context.Background(), f.mechanic, rep.ID.Hex()); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	name := "renamed"
	_, err := f.svc.Update(context.Background(), f.mechanic, rep.ID.Hex(), ReportPatch{Name: &name})
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Errorf("expected invalid state on update, got %v", err)
	}

	_, err = f.svc.AddDetail(context.Background(), f.mechanic, DetailInput{
		ReportID: rep.ID.Hex(),
		ItemID:   f.itemLight.ID.Hex(),
		StateID:  f.stateOK.ID.Hex(),
	})
	if apperr.KindOf(err) != apperr.KindInvalidState {
		t.Errorf("expected invalid state on detail write, got %v", err)
	}
}

func TestMechanicCannotTouchForeignReport(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)

	if _, err := f.svc.Get(context.Background(), f.other, rep.ID.Hex()); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("expected forbidden on get, got %v", err)
	}

	_, err := f.svc.AddDetail(context.Background(), f.other, DetailInput{
		ReportID: rep.ID.Hex(),
		ItemID:   f.itemHorn.ID.Hex(),
		StateID:  f.stateOK.ID.Hex(),
	})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("expected forbidden on detail write, got %v", err)
	}

	// Administrators see everything.
	if _, err := f.svc.Get(context.Background(), f.admin, rep.ID.Hex()); err != nil {
		t.Errorf("admin get: %v", err)
	}
}

func TestAddDetailOverwritesSameItem(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)

	first, err := f.svc.AddDetail(context.Background(), f.mechanic, DetailInput{
		ReportID: rep.ID.Hex(),
		ItemID:   f.itemHorn.ID.Hex(),
		StateID:  f.stateOK.ID.Hex(),
	})
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	second, err := f.svc.AddDetail(context.Background(), f.mechanic, DetailInput{
		ReportID:     rep.ID.Hex(),
		ItemID:       f.itemHorn.ID.Hex(),
		StateID:      f.stateBad.ID.Hex(),
		InternalNote: "intermittent",
	})
	if err != nil {
		t.Fatalf("second write: %v", err)
	}

	if first.ID != second.ID {
		t.Error("expected the same detail row to be overwritten, not duplicated")
	}
	if second.StateID != f.stateBad.ID {
		t.Error("expected the second state to win")
	}

	details, _ := f.repo.ListDetails(context.Background(), rep.ID)
	if len(details) != 1 {
		t.Fatalf("expected 1 detail, got %d", len(details))
	}
}

func TestBatchSkipsDanglingReferences(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)

	entries := []BatchDetailEntry{
		{ItemID: f.itemHorn.ID.Hex(), StateID: f.stateOK.ID.Hex()},
		{ItemID: primitive.NewObjectID().Hex(), StateID: f.stateOK.ID.Hex()},
		{ItemID: f.itemSeals.ID.Hex(), StateID: primitive.NewObjectID().Hex()},
		{ItemID: "not-an-id", StateID: f.stateOK.ID.Hex()},
	}
	result, err := f.svc.AddDetailsBatch(context.Background(), f.mechanic, rep.ID.Hex(), entries)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}

	if result.Total != 4 {
		t.Errorf("expected total 4, got %d", result.Total)
	}
	if result.Processed != 1 {
		t.Errorf("expected 1 processed, got %d", result.Processed)
	}
	if len(result.Details) != 1 {
		t.Errorf("expected 1 written detail, got %d", len(result.Details))
	}
}

func TestOwnerDeletesOwnInProcessReportAndCascades(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)
	f.fillMandatory(t, f.mechanic, rep)

	if err := f.svc.Delete(context.Background(), f.other, rep.ID.Hex()); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for a foreign mechanic, got %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.mechanic, rep.ID.Hex()); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if len(f.repo.reports) != 0 {
		t.Error("expected report removed")
	}
	if len(f.repo.details) != 0 {
		t.Error("expected details cascaded")
	}
}

func TestDeleteFinalizedReportRequiresAdmin(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)
	f.fillMandatory(t, f.mechanic, rep)
	if _, err := f.svc.Finalize(context.Background(), f.mechanic, rep.ID.Hex()); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.mechanic, rep.ID.Hex()); apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden for the owner once finalized, got %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.admin, rep.ID.Hex()); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if len(f.repo.reports) != 0 {
		t.Error("expected report removed")
	}
	if len(f.repo.details) != 0 {
		t.Error("expected details cascaded")
	}
}

func TestAdminCannotEditMechanicReportContent(t *testing.T) {
	f := newFixture()
	rep := f.createReport(t, f.mechanic)
	f.fillMandatory(t, f.mechanic, rep)

	name := "renamed"
	if _, err := f.svc.Update(context.Background(), f.admin, rep.ID.Hex(), ReportPatch{Name: &name}); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("expected forbidden on admin update, got %v", err)
	}

	_, err := f.svc.AddDetail(context.Background(), f.admin, DetailInput{
		ReportID: rep.ID.Hex(),
		ItemID:   f.itemHorn.ID.Hex(),
		StateID:  f.stateOK.ID.Hex(),
	})
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("expected forbidden on admin detail write, got %v", err)
	}

	if _, err := f.svc.Finalize(context.Background(), f.admin, rep.ID.Hex()); apperr.KindOf(err) != apperr.KindForbidden {
		t.Errorf("expected forbidden on admin finalize, got %v", err)
	}
}

func TestMechanicListingForcedToOwnReports(t *testing.T) {
	f := newFixture()
	f.createReport(t, f.mechanic)

	if _, _, err := f.svc.List(context.Background(), f.other, ListFilter{OwnerID: f.mechanic.ID.Hex()}, 0, 25); err != nil {
		t.Fatalf("list: %v", err)
	}
	if got := f.repo.capturedFilter["owner_id"]; got != f.other.ID {
		t.Errorf("expected listing scoped to the caller, filter had %v", got)
	}
}
