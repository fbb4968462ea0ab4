package machine

import (
	"context"
	"errors"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/machinetype"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsageChecker reports whether reports still reference a machine.
// Implemented by the report repository and wired in main.
type UsageChecker interface {
	MachineInUse(ctx context.Context, machineID string) (bool, error)
}

type MachineService interface {
	Create(ctx context.Context, input CreateMachineInput) (*Machine, error)
	Get(ctx context.Context, id string) (*MachineWithType, error)
	List(ctx context.Context, machineTypeID string, skip, limit int64) ([]Machine, error)
	Update(ctx context.Context, id string, patch MachinePatch) (*Machine, error)
	Delete(ctx context.Context, id string) error
}

type MachineServiceImpl struct {
	Repo     MachineRepository
	TypeRepo machinetype.MachineTypeRepository
	Usage    UsageChecker
}

func NewMachineService(repo MachineRepository, typeRepo machinetype.MachineTypeRepository, usage UsageChecker) MachineService {
	return &MachineServiceImpl{Repo: repo, TypeRepo: typeRepo, Usage: usage}
}

func (s *MachineServiceImpl) Create(ctx context.Context, input CreateMachineInput) (*Machine, error) {
	if input.Client == "" {
		return nil, apperr.Validation("machine client is required")
	}

	typeID, err := s.resolveType(ctx, input.MachineTypeID)
	if err != nil {
		return nil, err
	}

	m := &Machine{
		MachineTypeID: typeID,
		Client:        input.Client,
		SerialNumber:  input.SerialNumber,
		FleetNumber:   input.FleetNumber,
		PlateNumber:   input.PlateNumber,
		Hours:         input.Hours,
		Mileage:       input.Mileage,
		Zone:          input.Zone,
		Capacity:      input.Capacity,
		Status:        StatusActive,
	}

	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, apperr.Store(err, "creating machine")
	}
	return m, nil
}

func (s *MachineServiceImpl) Get(ctx context.Context, id string) (*MachineWithType, error) {
	m, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("machine with ID %s not found", id)
		}
		return nil, apperr.Store(err, "loading machine %s", id)
	}

	out := &MachineWithType{Machine: *m}
	if mt, err := s.TypeRepo.FindByID(ctx, m.MachineTypeID.Hex()); err == nil {
		out.MachineType = mt
	}
	return out, nil
}

func (s *MachineServiceImpl) List(ctx context.Context, machineTypeID string, skip, limit int64) ([]Machine, error) {
	filter := bson.M{}
	if machineTypeID != "" {
		oid, err := primitive.ObjectIDFromHex(machineTypeID)
		if err != nil {
			return nil, apperr.Validation("invalid machine type ID %s", machineTypeID)
		}
		filter["machine_type_id"] = oid
	}

	machines, err := s.Repo.List(ctx, filter, skip, limit)
	if err != nil {
		return nil, apperr.Store(err, "listing machines")
	}
	return machines, nil
}

func (s *MachineServiceImpl) Update(ctx context.Context, id string, patch MachinePatch) (*Machine, error) {
	set := bson.M{}
	if patch.MachineTypeID != nil {
		typeID, err := s.resolveType(ctx, *patch.MachineTypeID)
		if err != nil {
			return nil, err
		}
		set["machine_type_id"] = typeID
	}
	if patch.Client != nil {
		set["client"] = *patch.Client
	}
	if patch.SerialNumber != nil {
		set["serial_number"] = *patch.SerialNumber
	}
	if patch.FleetNumber != nil {
		set["fleet_number"] = *patch.FleetNumber
	}
	if patch.PlateNumber != nil {
		set["plate_number"] = *patch.PlateNumber
	}
	if patch.Hours != nil {
		set["hours"] = *patch.Hours
	}
	if patch.Mileage != nil {
		set["mileage"] = *patch.Mileage
	}
	if patch.Zone != nil {
		set["zone"] = *patch.Zone
	}
	if patch.Capacity != nil {
		set["capacity"] = *patch.Capacity
	}
	if len(set) == 0 {
		m, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return &m.Machine, nil
	}

	m, err := s.Repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("machine with ID %s not found", id)
		}
		return nil, apperr.Store(err, "updating machine %s", id)
	}
	return m, nil
}

// Delete removes a machine, or deactivates it when reports still reference
// it so their history keeps resolving.
func (s *MachineServiceImpl) Delete(ctx context.Context, id string) error {
	inUse, err := s.Usage.MachineInUse(ctx, id)
	if err != nil {
		return apperr.Store(err, "checking machine usage")
	}

	if inUse {
		if _, err := s.Repo.Update(ctx, id, bson.M{"status": StatusInactive}); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return apperr.NotFound("machine with ID %s not found", id)
			}
			return apperr.Store(err, "deactivating machine %s", id)
		}
		return nil
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("machine with ID %s not found", id)
		}
		return apperr.Store(err, "deleting machine %s", id)
	}
	return nil
}

func (s *MachineServiceImpl) resolveType(ctx context.Context, machineTypeID string) (primitive.ObjectID, error) {
	mt, err := s.TypeRepo.FindByID(ctx, machineTypeID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return primitive.NilObjectID, apperr.NotFound("machine type with ID %s not found", machineTypeID)
		}
		return primitive.NilObjectID, apperr.Store(err, "loading machine type %s", machineTypeID)
	}
	return mt.ID, nil
}
