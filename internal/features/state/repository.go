package state

import (
	"context"

	"go-inspect/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type StateRepository interface {
	Create(ctx context.Context, st *PossibleState) error
	FindByID(ctx context.Context, id string) (*PossibleState, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]PossibleState, error)
	ListByMachineType(ctx context.Context, machineTypeID primitive.ObjectID) ([]PossibleState, error)
	Update(ctx context.Context, id string, patch bson.M) (*PossibleState, error)
	Delete(ctx context.Context, id string) error
}

type StateRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewStateRepository(mongodb *database.MongodbDB) StateRepository {
	return &StateRepositoryImpl{
		Collection: mongodb.DB.Collection("possible_states"),
	}
}

func (r *StateRepositoryImpl) Create(ctx context.Context, st *PossibleState) error {
	if st.ID.IsZero() {
		st.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, st)
	return err
}

func (r *StateRepositoryImpl) FindByID(ctx context.Context, id string) (*PossibleState, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var st PossibleState
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&st); err != nil {
		return nil, err
	}
	return &st, nil
}

// FindByIDs resolves state names in one query so the aggregator's cost stays
// linear in template size.
func (r *StateRepositoryImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]PossibleState, error) {
	out := make(map[primitive.ObjectID]PossibleState, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var states []PossibleState
	if err := cursor.All(ctx, &states); err != nil {
		return nil, err
	}
	for _, st := range states {
		out[st.ID] = st
	}
	return out, nil
}

func (r *StateRepositoryImpl) ListByMachineType(ctx context.Context, machineTypeID primitive.ObjectID) ([]PossibleState, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{"machine_type_id": machineTypeID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var states []PossibleState
	if err := cursor.All(ctx, &states); err != nil {
		return nil, err
	}
	return states, nil
}

func (r *StateRepositoryImpl) Update(ctx context.Context, id string, patch bson.M) (*PossibleState, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var st PossibleState
	err = r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch}, opts).Decode(&st)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *StateRepositoryImpl) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return mongo.ErrNoDocuments
	}

	res, err := r.Collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
