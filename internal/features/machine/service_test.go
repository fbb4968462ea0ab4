package machine

import (
	"context"
	"testing"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/machinetype"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type memMachineRepo struct {
	machines map[primitive.ObjectID]*Machine
}

func (m *memMachineRepo) Create(ctx context.Context, mc *Machine) error {
	if mc.ID.IsZero() {
		mc.ID = primitive.NewObjectID()
	}
	m.machines[mc.ID] = mc
	return nil
}

func (m *memMachineRepo) FindByID(ctx context.Context, id string) (*Machine, error) {
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

func (m *memMachineRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Machine, error) {
	out := map[primitive.ObjectID]Machine{}
	for _, id := range ids {
		if mc, ok := m.machines[id]; ok {
			out[id] = *mc
		}
	}
	return out, nil
}

func (m *memMachineRepo) List(ctx context.Context, filter bson.M, skip, limit int64) ([]Machine, error) {
	return nil, nil
}

func (m *memMachineRepo) Update(ctx context.Context, id string, patch bson.M) (*Machine, error) {
	mc, err := m.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v, ok := patch["status"].(string); ok {
		mc.Status = v
	}
	if v, ok := patch["client"].(string); ok {
		mc.Client = v
	}
	return mc, nil
}

func (m *memMachineRepo) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}
	if _, ok := m.machines[oid]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.machines, oid)
	return nil
}

func (m *memMachineRepo) MachineTypeInUse(ctx context.Context, machineTypeID string) (bool, error) {
	return false, nil
}

type stubTypeRepo struct {
	mt *machinetype.MachineType
}

func (s *stubTypeRepo) Create(ctx context.Context, mt *machinetype.MachineType) error { return nil }
func (s *stubTypeRepo) FindByID(ctx context.Context, id string) (*machinetype.MachineType, error) {
	if s.mt != nil && s.mt.ID.Hex() == id {
		return s.mt, nil
	}
	return nil, mongo.ErrNoDocuments
}
func (s *stubTypeRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]machinetype.MachineType, error) {
	return nil, nil
}
func (s *stubTypeRepo) List(ctx context.Context, skip, limit int64) ([]machinetype.MachineType, error) {
	return nil, nil
}
func (s *stubTypeRepo) Update(ctx context.Context, id string, patch bson.M) (*machinetype.MachineType, error) {
	return nil, mongo.ErrNoDocuments
}
func (s *stubTypeRepo) Delete(ctx context.Context, id string) error { return nil }

type stubMachineUsage struct {
	inUse bool
}

func (s *stubMachineUsage) MachineInUse(ctx context.Context, machineID string) (bool, error) {
	return s.inUse, nil
}

func TestDeleteDeactivatesReferencedMachine(t *testing.T) {
	repo := &memMachineRepo{machines: map[primitive.ObjectID]*Machine{}}
	mc := &Machine{ID: primitive.NewObjectID(), Client: "Acme", Status: StatusActive}
	repo.machines[mc.ID] = mc

	svc := &MachineServiceImpl{Repo: repo, TypeRepo: &stubTypeRepo{}, Usage: &stubMachineUsage{inUse: true}}
	if err := svc.Delete(context.Background(), mc.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}

	kept, ok := repo.machines[mc.ID]
	if !ok {
		t.Fatal("referenced machine must not be removed")
	}
	if kept.Status != StatusInactive {
		t.Errorf("expected status %q, got %q", StatusInactive, kept.Status)
	}
}

func TestDeleteRemovesUnreferencedMachine(t *testing.T) {
	repo := &memMachineRepo{machines: map[primitive.ObjectID]*Machine{}}
	mc := &Machine{ID: primitive.NewObjectID(), Client: "Acme", Status: StatusActive}
	repo.machines[mc.ID] = mc

	svc := &MachineServiceImpl{Repo: repo, TypeRepo: &stubTypeRepo{}, Usage: &stubMachineUsage{}}
	if err := svc.Delete(context.Background(), mc.ID.Hex()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.machines) != 0 {
		t.Error("expected machine removed")
	}
}

func TestCreateRequiresKnownMachineType(t *testing.T) {
	repo := &memMachineRepo{machines: map[primitive.ObjectID]*Machine{}}
	svc := &MachineServiceImpl{Repo: repo, TypeRepo: &stubTypeRepo{}, Usage: &stubMachineUsage{}}

	_, err := svc.Create(context.Background(), CreateMachineInput{
		MachineTypeID: primitive.NewObjectID().Hex(),
		Client:        "Acme",
	})
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
