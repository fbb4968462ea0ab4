package machinetype

import (
	"context"

	"go-inspect/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MachineTypeRepository interface {
	Create(ctx context.Context, mt *MachineType) error
	FindByID(ctx context.Context, id string) (*MachineType, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]MachineType, error)
	List(ctx context.Context, skip, limit int64) ([]MachineType, error)
	Update(ctx context.Context, id string, patch bson.M) (*MachineType, error)
	Delete(ctx context.Context, id string) error
}

type MachineTypeRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewMachineTypeRepository(mongodb *database.MongodbDB) MachineTypeRepository {
	return &MachineTypeRepositoryImpl{
		Collection: mongodb.DB.Collection("machine_types"),
	}
}

func (r *MachineTypeRepositoryImpl) Create(ctx context.Context, mt *MachineType) error {
	if mt.ID.IsZero() {
		mt.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, mt)
	return err
}

func (r *MachineTypeRepositoryImpl) FindByID(ctx context.Context, id string) (*MachineType, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var mt MachineType
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&mt); err != nil {
		return nil, err
	}
	return &mt, nil
}

// FindByIDs resolves several types in one round trip, for hydration.
func (r *MachineTypeRepositoryImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]MachineType, error) {
	out := make(map[primitive.ObjectID]MachineType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var types []MachineType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, err
	}
	for _, mt := range types {
		out[mt.ID] = mt
	}
	return out, nil
}

func (r *MachineTypeRepositoryImpl) List(ctx context.Context, skip, limit int64) ([]MachineType, error) {
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := r.Collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var types []MachineType
	if err := cursor.All(ctx, &types); err != nil {
		return nil, err
	}
	return types, nil
}

func (r *MachineTypeRepositoryImpl) Update(ctx context.Context, id string, patch bson.M) (*MachineType, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mt MachineType
	err = r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch}, opts).Decode(&mt)
	if err != nil {
		return nil, err
	}
	return &mt, nil
}

func (r *MachineTypeRepositoryImpl) Delete(ctx context.Context, id string) error {
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
