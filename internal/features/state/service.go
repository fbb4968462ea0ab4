package state

import (
	"context"
	"errors"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/machinetype"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsageChecker reports whether report details still reference a state.
// Implemented by the report repository and wired in main.
type UsageChecker interface {
	StateInUse(ctx context.Context, stateID string) (bool, error)
}

type StateService interface {
	Create(ctx context.Context, input CreateStateInput) (*PossibleState, error)
	Get(ctx context.Context, id string) (*PossibleState, error)
	ListByMachineType(ctx context.Context, machineTypeID string) ([]PossibleState, error)
	Update(ctx context.Context, id string, patch StatePatch) (*PossibleState, error)
	Delete(ctx context.Context, id string) error
}

type StateServiceImpl struct {
	Repo     StateRepository
	TypeRepo machinetype.MachineTypeRepository
	Usage    UsageChecker
}

func NewStateService(repo StateRepository, typeRepo machinetype.MachineTypeRepository, usage UsageChecker) StateService {
	return &StateServiceImpl{Repo: repo, TypeRepo: typeRepo, Usage: usage}
}

func (s *StateServiceImpl) Create(ctx context.Context, input CreateStateInput) (*PossibleState, error) {
	if input.Name == "" {
		return nil, apperr.Validation("state name is required")
	}

	mt, err := s.TypeRepo.FindByID(ctx, input.MachineTypeID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("machine type with ID %s not found", input.MachineTypeID)
		}
		return nil, apperr.Store(err, "loading machine type %s", input.MachineTypeID)
	}

	st := &PossibleState{Name: input.Name, MachineTypeID: mt.ID}
	if err := s.Repo.Create(ctx, st); err != nil {
		return nil, apperr.Store(err, "creating possible state")
	}
	return st, nil
}

func (s *StateServiceImpl) Get(ctx context.Context, id string) (*PossibleState, error) {
	st, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("possible state with ID %s not found", id)
		}
		return nil, apperr.Store(err, "loading possible state %s", id)
	}
	return st, nil
}

func (s *StateServiceImpl) ListByMachineType(ctx context.Context, machineTypeID string) ([]PossibleState, error) {
	oid, err := primitive.ObjectIDFromHex(machineTypeID)
	if err != nil {
		return nil, apperr.Validation("invalid machine type ID %s", machineTypeID)
	}

	states, err := s.Repo.ListByMachineType(ctx, oid)
	if err != nil {
		return nil, apperr.Store(err, "listing possible states")
	}
	return states, nil
}

func (s *StateServiceImpl) Update(ctx context.Context, id string, patch StatePatch) (*PossibleState, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if len(set) == 0 {
		return s.Get(ctx, id)
	}

	st, err := s.Repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("possible state with ID %s not found", id)
		}
		return nil, apperr.Store(err, "updating possible state %s", id)
	}
	return st, nil
}

// Delete refuses to remove a state that report details still reference.
func (s *StateServiceImpl) Delete(ctx context.Context, id string) error {
	inUse, err := s.Usage.StateInUse(ctx, id)
	if err != nil {
		return apperr.Store(err, "checking state usage")
	}
	if inUse {
		return apperr.Validation("cannot delete a possible state that's in use by report details")
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("possible state with ID %s not found", id)
		}
		return apperr.Store(err, "deleting possible state %s", id)
	}
	return nil
}
