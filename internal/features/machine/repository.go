package machine

import (
	"context"

	"go-inspect/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MachineRepository interface {
	Create(ctx context.Context, m *Machine) error
	FindByID(ctx context.Context, id string) (*Machine, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Machine, error)
	List(ctx context.Context, filter bson.M, skip, limit int64) ([]Machine, error)
	Update(ctx context.Context, id string, patch bson.M) (*Machine, error)
	Delete(ctx context.Context, id string) error

	// MachineTypeInUse satisfies machinetype.UsageChecker.
	MachineTypeInUse(ctx context.Context, machineTypeID string) (bool, error)
}

type MachineRepositoryImpl struct {
	Collection *mongo.Collection
}

func NewMachineRepository(mongodb *database.MongodbDB) MachineRepository {
	return &MachineRepositoryImpl{
		Collection: mongodb.DB.Collection("machines"),
	}
}

func (r *MachineRepositoryImpl) Create(ctx context.Context, m *Machine) error {
	if m.ID.IsZero() {
		m.ID = primitive.NewObjectID()
	}
	_, err := r.Collection.InsertOne(ctx, m)
	return err
}

func (r *MachineRepositoryImpl) FindByID(ctx context.Context, id string) (*Machine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var m Machine
	if err := r.Collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MachineRepositoryImpl) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]Machine, error) {
	out := make(map[primitive.ObjectID]Machine, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := r.Collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var machines []Machine
	if err := cursor.All(ctx, &machines); err != nil {
		return nil, err
	}
	for _, m := range machines {
		out[m.ID] = m
	}
	return out, nil
}

func (r *MachineRepositoryImpl) List(ctx context.Context, filter bson.M, skip, limit int64) ([]Machine, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "client", Value: 1}})
	cursor, err := r.Collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var machines []Machine
	if err := cursor.All(ctx, &machines); err != nil {
		return nil, err
	}
	return machines, nil
}

func (r *MachineRepositoryImpl) Update(ctx context.Context, id string, patch bson.M) (*Machine, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m Machine
	err = r.Collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch}, opts).Decode(&m)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MachineRepositoryImpl) Delete(ctx context.Context, id string) error {
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

func (r *MachineRepositoryImpl) MachineTypeInUse(ctx context.Context, machineTypeID string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(machineTypeID)
	if err != nil {
		return false, nil
	}

	count, err := r.Collection.CountDocuments(ctx, bson.M{"machine_type_id": oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
