package machinetype

import (
	"context"
	"errors"

	"go-inspect/internal/common/apperr"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsageChecker reports whether machines still reference a machine type.
// Implemented by the machine repository and wired in main.
type UsageChecker interface {
	MachineTypeInUse(ctx context.Context, machineTypeID string) (bool, error)
}

type MachineTypeService interface {
	Create(ctx context.Context, input CreateMachineTypeInput) (*MachineType, error)
	Get(ctx context.Context, id string) (*MachineType, error)
	List(ctx context.Context, skip, limit int64) ([]MachineType, error)
	Update(ctx context.Context, id string, patch MachineTypePatch) (*MachineType, error)
	Delete(ctx context.Context, id string) error
}

type MachineTypeServiceImpl struct {
	Repo  MachineTypeRepository
	Usage UsageChecker
}

func NewMachineTypeService(repo MachineTypeRepository, usage UsageChecker) MachineTypeService {
	return &MachineTypeServiceImpl{Repo: repo, Usage: usage}
}

func (s *MachineTypeServiceImpl) Create(ctx context.Context, input CreateMachineTypeInput) (*MachineType, error) {
	if input.Name == "" {
		return nil, apperr.Validation("machine type name is required")
	}

	mt := &MachineType{Name: input.Name, Description: input.Description}
	if err := s.Repo.Create(ctx, mt); err != nil {
		return nil, apperr.Store(err, "creating machine type")
	}
	return mt, nil
}

func (s *MachineTypeServiceImpl) Get(ctx context.Context, id string) (*MachineType, error) {
	mt, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("machine type with ID %s not found", id)
		}
		return nil, apperr.Store(err, "loading machine type %s", id)
	}
	return mt, nil
}

func (s *MachineTypeServiceImpl) List(ctx context.Context, skip, limit int64) ([]MachineType, error) {
	types, err := s.Repo.List(ctx, skip, limit)
	if err != nil {
		return nil, apperr.Store(err, "listing machine types")
	}
	return types, nil
}

func (s *MachineTypeServiceImpl) Update(ctx context.Context, id string, patch MachineTypePatch) (*MachineType, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	mt, err := s.Repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("machine type with ID %s not found", id)
		}
		return nil, apperr.Store(err, "updating machine type %s", id)
	}
	return mt, nil
}

// Delete refuses to remove a type that machines still reference.
func (s *MachineTypeServiceImpl) Delete(ctx context.Context, id string) error {
	inUse, err := s.Usage.MachineTypeInUse(ctx, id)
	if err != nil {
		return apperr.Store(err, "checking machine type usage")
	}
	if inUse {
		return apperr.Validation("cannot delete a machine type that's in use by machines")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("machine type with ID %s not found", id)
		}
		return apperr.Store(err, "deleting machine type %s", id)
	}
	return nil
}
