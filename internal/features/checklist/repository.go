package checklist

import (
	"context"

	"go-inspect/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChecklistRepository interface {
	Create(ctx context.Context, cl *Checklist) error
	FindByID(ctx context.Context, id string) (*Checklist, error)
	List(ctx context.Context, filter bson.M, skip, limit int64) ([]Checklist, error)
	Update(ctx context.Context, id string, patch bson.M) (*Checklist, error)
	Delete(ctx context.Context, id string) error

	CreateGroup(ctx context.Context, g *Group) error
	FindGroup(ctx context.Context, id string) (*Group, error)
	ListGroups(ctx context.Context, checklistID primitive.ObjectID) ([]Group, error)
	UpdateGroup(ctx context.Context, id string, patch bson.M) (*Group, error)
	DeleteGroup(ctx context.Context, id string) error

	CreateItem(ctx context.Context, it *Item) error
	FindItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context, groupID primitive.ObjectID) ([]Item, error)
	ListItemsByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]Item, error)
	ExistingItemIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
	UpdateItem(ctx context.Context, id string, patch bson.M) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsByGroup(ctx context.Context, groupID primitive.ObjectID) error
}

type ChecklistRepositoryImpl struct {
	Checklists *mongo.Collection
	Groups     *mongo.Collection
	Items      *mongo.Collection
}

func NewChecklistRepository(mongodb *database.MongodbDB) ChecklistRepository {
	return &ChecklistRepositoryImpl{
		Checklists: mongodb.DB.Collection("checklists"),
		Groups:     mongodb.DB.Collection("checklist_groups"),
		Items:      mongodb.DB.Collection("checklist_items"),
	}
}

func (r *ChecklistRepositoryImpl) Create(ctx context.Context, cl *Checklist) error {
	if cl.ID.IsZero() {
		cl.ID = primitive.NewObjectID()
	}
	_, err := r.Checklists.InsertOne(ctx, cl)
	return err
}

func (r *ChecklistRepositoryImpl) FindByID(ctx context.Context, id string) (*Checklist, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var cl Checklist
	if err := r.Checklists.FindOne(ctx, bson.M{"_id": oid}).Decode(&cl); err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *ChecklistRepositoryImpl) List(ctx context.Context, filter bson.M, skip, limit int64) ([]Checklist, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.Checklists.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var checklists []Checklist
	if err := cursor.All(ctx, &checklists); err != nil {
		return nil, err
	}
	return checklists, nil
}

func (r *ChecklistRepositoryImpl) Update(ctx context.Context, id string, patch bson.M) (*Checklist, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var cl Checklist
	err = r.Checklists.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch}, opts).Decode(&cl)
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *ChecklistRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := r.Checklists.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ChecklistRepositoryImpl) CreateGroup(ctx context.Context, g *Group) error {
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	_, err := r.Groups.InsertOne(ctx, g)
	return err
}

func (r *ChecklistRepositoryImpl) FindGroup(ctx context.Context, id string) (*Group, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var g Group
	if err := r.Groups.FindOne(ctx, bson.M{"_id": oid}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *ChecklistRepositoryImpl) ListGroups(ctx context.Context, checklistID primitive.ObjectID) ([]Group, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.Groups.Find(ctx, bson.M{"checklist_id": checklistID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var groups []Group
	if err := cursor.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *ChecklistRepositoryImpl) UpdateGroup(ctx context.Context, id string, patch bson.M) (*Group, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var g Group
	err = r.Groups.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch}, opts).Decode(&g)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *ChecklistRepositoryImpl) DeleteGroup(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := r.Groups.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ChecklistRepositoryImpl) CreateItem(ctx context.Context, it *Item) error {
	if it.ID.IsZero() {
		it.ID = primitive.NewObjectID()
	}
	_, err := r.Items.InsertOne(ctx, it)
	return err
}

func (r *ChecklistRepositoryImpl) FindItem(ctx context.Context, id string) (*Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var it Item
	if err := r.Items.FindOne(ctx, bson.M{"_id": oid}).Decode(&it); err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ChecklistRepositoryImpl) ListItems(ctx context.Context, groupID primitive.ObjectID) ([]Item, error) {
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.Items.Find(ctx, bson.M{"group_id": groupID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListItemsByGroups loads the items of several groups in one query; callers
// order them per group by rank.
func (r *ChecklistRepositoryImpl) ListItemsByGroups(ctx context.Context, groupIDs []primitive.ObjectID) ([]Item, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "rank", Value: 1}})
	cursor, err := r.Items.Find(ctx, bson.M{"group_id": bson.M{"$in": groupIDs}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []Item
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ExistingItemIDs filters the given ids down to the ones present, in one
// query, for bulk validation of batch detail submissions.
func (r *ChecklistRepositoryImpl) ExistingItemIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error) {
	out := make(map[primitive.ObjectID]bool, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.Items.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = true
	}
	return out, nil
}

func (r *ChecklistRepositoryImpl) UpdateItem(ctx context.Context, id string, patch bson.M) (*Item, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var it Item
	err = r.Items.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch}, opts).Decode(&it)
	if err != nil {
		return nil, err
	}
	return &it, nil
}

func (r *ChecklistRepositoryImpl) DeleteItem(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := r.Items.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ChecklistRepositoryImpl) DeleteItemsByGroup(ctx context.Context, groupID primitive.ObjectID) error {
	_, err := r.Items.DeleteMany(ctx, bson.M{"group_id": groupID})
	return err
}
