package checklist

import (
	"context"
	"errors"
	"time"

	"go-inspect/internal/common/apperr"
	"go-inspect/internal/features/machinetype"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// UsageChecker reports whether reports still reference a template or one of
// its items. Implemented by the report repository and wired in main.
type UsageChecker interface {
	ChecklistInUse(ctx context.Context, checklistID string) (bool, error)
	ItemInUse(ctx context.Context, itemID string) (bool, error)
}

type ChecklistService interface {
	Create(ctx context.Context, input CreateChecklistInput) (*Checklist, error)
	Get(ctx context.Context, id string) (*Checklist, error)
	GetWithGroups(ctx context.Context, id string) (*ChecklistWithGroups, error)
	List(ctx context.Context, skip, limit int64) ([]Checklist, error)
	ListActiveByMachineType(ctx context.Context, machineTypeID string, skip, limit int64) ([]Checklist, error)
	Update(ctx context.Context, id string, patch ChecklistPatch) (*Checklist, error)
	Delete(ctx context.Context, id string) error

	CreateGroup(ctx context.Context, input CreateGroupInput) (*Group, error)
	UpdateGroup(ctx context.Context, id string, patch GroupPatch) (*Group, error)
	DeleteGroup(ctx context.Context, id string) error

	CreateItem(ctx context.Context, input CreateItemInput) (*Item, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
}

type ChecklistServiceImpl struct {
	Repo     ChecklistRepository
	TypeRepo machinetype.MachineTypeRepository
	Usage    UsageChecker
}

func NewChecklistService(repo ChecklistRepository, typeRepo machinetype.MachineTypeRepository, usage UsageChecker) ChecklistService {
	return &ChecklistServiceImpl{Repo: repo, TypeRepo: typeRepo, Usage: usage}
}

func (s *ChecklistServiceImpl) Create(ctx context.Context, input CreateChecklistInput) (*Checklist, error) {
	if input.Name == "" {
		return nil, apperr.Validation("checklist name is required")
	}

	mt, err := s.TypeRepo.FindByID(ctx, input.MachineTypeID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("machine type with ID %s not found", input.MachineTypeID)
		}
		return nil, apperr.Store(err, "loading machine type %s", input.MachineTypeID)
	}

	active := true
	if input.Active != nil {
		active = *input.Active
	}

	now := time.Now()
	cl := &Checklist{
		Name:          input.Name,
		MachineTypeID: mt.ID,
		Version:       input.Version,
		Active:        active,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.Repo.Create(ctx, cl); err != nil {
		return nil, apperr.Store(err, "creating checklist")
	}
	return cl, nil
}

func (s *ChecklistServiceImpl) Get(ctx context.Context, id string) (*Checklist, error) {
	cl, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("checklist with ID %s not found", id)
		}
		return nil, apperr.Store(err, "loading checklist %s", id)
	}
	return cl, nil
}

// GetWithGroups hydrates a template with its groups and items. Groups come
// back ordered by rank, items ordered by rank within each group, using two
// queries regardless of template size.
func (s *ChecklistServiceImpl) GetWithGroups(ctx context.Context, id string) (*ChecklistWithGroups, error) {
	cl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	groups, err := s.Repo.ListGroups(ctx, cl.ID)
	if err != nil {
		return nil, apperr.Store(err, "loading checklist groups")
	}

	groupIDs := make([]primitive.ObjectID, len(groups))
	for i, g := range groups {
		groupIDs[i] = g.ID
	}

	items, err := s.Repo.ListItemsByGroups(ctx, groupIDs)
	if err != nil {
		return nil, apperr.Store(err, "loading checklist items")
	}

	itemsByGroup := make(map[primitive.ObjectID][]Item, len(groups))
	for _, it := range items {
		itemsByGroup[it.GroupID] = append(itemsByGroup[it.GroupID], it)
	}

	out := &ChecklistWithGroups{Checklist: *cl, Groups: make([]GroupWithItems, 0, len(groups))}
	for _, g := range groups {
		grouped := itemsByGroup[g.ID]
		if grouped == nil {
			grouped = []Item{}
		}
		out.Groups = append(out.Groups, GroupWithItems{Group: g, Items: grouped})
	}
	return out, nil
}

func (s *ChecklistServiceImpl) List(ctx context.Context, skip, limit int64) ([]Checklist, error) {
	checklists, err := s.Repo.List(ctx, nil, skip, limit)
	if err != nil {
		return nil, apperr.Store(err, "listing checklists")
	}
	return checklists, nil
}

func (s *ChecklistServiceImpl) ListActiveByMachineType(ctx context.Context, machineTypeID string, skip, limit int64) ([]Checklist, error) {
	oid, err := primitive.ObjectIDFromHex(machineTypeID)
	if err != nil {
		return nil, apperr.Validation("invalid machine type ID %s", machineTypeID)
	}

	checklists, err := s.Repo.List(ctx, bson.M{"machine_type_id": oid, "active": true}, skip, limit)
	if err != nil {
		return nil, apperr.Store(err, "listing checklists by machine type")
	}
	return checklists, nil
}

func (s *ChecklistServiceImpl) Update(ctx context.Context, id string, patch ChecklistPatch) (*Checklist, error) {
	set := bson.M{"updated_at": time.Now()}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Version != nil {
		set["version"] = *patch.Version
	}
	if patch.Active != nil {
		set["active"] = *patch.Active
	}

	cl, err := s.Repo.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("checklist with ID %s not found", id)
		}
		return nil, apperr.Store(err, "updating checklist %s", id)
	}
	return cl, nil
}

// Delete deactivates a template that reports still reference; otherwise it
// cascades groups and items before removing the template row.
func (s *ChecklistServiceImpl) Delete(ctx context.Context, id string) error {
	cl, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	inUse, err := s.Usage.ChecklistInUse(ctx, id)
	if err != nil {
		return apperr.Store(err, "checking checklist usage")
	}

	if inUse {
		if _, err := s.Repo.Update(ctx, id, bson.M{"active": false, "updated_at": time.Now()}); err != nil {
			return apperr.Store(err, "deactivating checklist %s", id)
		}
		return nil
	}

	groups, err := s.Repo.ListGroups(ctx, cl.ID)
	if err != nil {
		return apperr.Store(err, "loading checklist groups")
	}
	for _, g := range groups {
		if err := s.Repo.DeleteItemsByGroup(ctx, g.ID); err != nil {
			return apperr.Store(err, "deleting items of group %s", g.ID.Hex())
		}
		if err := s.Repo.DeleteGroup(ctx, g.ID.Hex()); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.Store(err, "deleting group %s", g.ID.Hex())
		}
	}

	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("checklist with ID %s not found", id)
		}
		return apperr.Store(err, "deleting checklist %s", id)
	}
	return nil
}

func (s *ChecklistServiceImpl) CreateGroup(ctx context.Context, input CreateGroupInput) (*Group, error) {
	cl, err := s.Get(ctx, input.ChecklistID)
	if err != nil {
		return nil, err
	}
	if input.Name == "" {
		return nil, apperr.Validation("group name is required")
	}

	g := &Group{ChecklistID: cl.ID, Name: input.Name, Rank: input.Rank}
	if err := s.Repo.CreateGroup(ctx, g); err != nil {
		return nil, apperr.Store(err, "creating group")
	}

	s.touch(ctx, cl.ID.Hex())
	return g, nil
}

func (s *ChecklistServiceImpl) UpdateGroup(ctx context.Context, id string, patch GroupPatch) (*Group, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Rank != nil {
		set["rank"] = *patch.Rank
	}
	if len(set) == 0 {
		g, err := s.Repo.FindGroup(ctx, id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.NotFound("group with ID %s not found", id)
			}
			return nil, apperr.Store(err, "loading group %s", id)
		}
		return g, nil
	}

	g, err := s.Repo.UpdateGroup(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("group with ID %s not found", id)
		}
		return nil, apperr.Store(err, "updating group %s", id)
	}

	s.touch(ctx, g.ChecklistID.Hex())
	return g, nil
}

// DeleteGroup cascades the group's items.
func (s *ChecklistServiceImpl) DeleteGroup(ctx context.Context, id string) error {
	g, err := s.Repo.FindGroup(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("group with ID %s not found", id)
		}
		return apperr.Store(err, "loading group %s", id)
	}

	if err := s.Repo.DeleteItemsByGroup(ctx, g.ID); err != nil {
		return apperr.Store(err, "deleting items of group %s", id)
	}
	if err := s.Repo.DeleteGroup(ctx, id); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.Store(err, "deleting group %s", id)
	}

	s.touch(ctx, g.ChecklistID.Hex())
	return nil
}

func (s *ChecklistServiceImpl) CreateItem(ctx context.Context, input CreateItemInput) (*Item, error) {
	g, err := s.Repo.FindGroup(ctx, input.GroupID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("group with ID %s not found", input.GroupID)
		}
		return nil, apperr.Store(err, "loading group %s", input.GroupID)
	}
	if input.Name == "" {
		return nil, apperr.Validation("item name is required")
	}

	mandatory := true
	if input.Mandatory != nil {
		mandatory = *input.Mandatory
	}

	it := &Item{GroupID: g.ID, Name: input.Name, Rank: input.Rank, Mandatory: mandatory}
	if err := s.Repo.CreateItem(ctx, it); err != nil {
		return nil, apperr.Store(err, "creating item")
	}

	s.touch(ctx, g.ChecklistID.Hex())
	return it, nil
}

func (s *ChecklistServiceImpl) UpdateItem(ctx context.Context, id string, patch ItemPatch) (*Item, error) {
	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Rank != nil {
		set["rank"] = *patch.Rank
	}
	if patch.Mandatory != nil {
		set["mandatory"] = *patch.Mandatory
	}
	if len(set) == 0 {
		it, err := s.Repo.FindItem(ctx, id)
		if err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return nil, apperr.NotFound("item with ID %s not found", id)
			}
			return nil, apperr.Store(err, "loading item %s", id)
		}
		return it, nil
	}

	it, err := s.Repo.UpdateItem(ctx, id, set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperr.NotFound("item with ID %s not found", id)
		}
		return nil, apperr.Store(err, "updating item %s", id)
	}

	if g, err := s.Repo.FindGroup(ctx, it.GroupID.Hex()); err == nil {
		s.touch(ctx, g.ChecklistID.Hex())
	}
	return it, nil
}

// DeleteItem refuses to remove an item that report details still reference.
func (s *ChecklistServiceImpl) DeleteItem(ctx context.Context, id string) error {
	it, err := s.Repo.FindItem(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("item with ID %s not found", id)
		}
		return apperr.Store(err, "loading item %s", id)
	}

	inUse, err := s.Usage.ItemInUse(ctx, id)
	if err != nil {
		return apperr.Store(err, "checking item usage")
	}
	if inUse {
		return apperr.Validation("cannot delete a checklist item that's in use by report details")
	}

	if err := s.Repo.DeleteItem(ctx, id); err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.Store(err, "deleting item %s", id)
	}

	if g, err := s.Repo.FindGroup(ctx, it.GroupID.Hex()); err == nil {
		s.touch(ctx, g.ChecklistID.Hex())
	}
	return nil
}

// touch bumps the owning template's updated timestamp after any group or
// item mutation. Failures are ignored; the timestamp is advisory.
func (s *ChecklistServiceImpl) touch(ctx context.Context, checklistID string) {
	_, _ = s.Repo.Update(ctx, checklistID, bson.M{"updated_at": time.Now()})
}
