package report

import (
	"context"
	"time"

	"go-inspect/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	FindByID(ctx context.Context, id string) (*Report, error)
	List(ctx context.Context, filter bson.M, skip, limit int64) ([]Report, error)
	Count(ctx context.Context, filter bson.M) (int64, error)
	Update(ctx context.Context, id string, patch bson.M) (*Report, error)
	// SetFinishedAt flips the finalization timestamp with a conditional
	// write: it only matches a report whose timestamp is still null.
	SetFinishedAt(ctx context.Context, id primitive.ObjectID, at time.Time) (*Report, error)
	Delete(ctx context.Context, id primitive.ObjectID) error

	FindDetail(ctx context.Context, id string) (*ReportDetail, error)
	ListDetails(ctx context.Context, reportID primitive.ObjectID) ([]ReportDetail, error)
	UpsertDetail(ctx context.Context, d *ReportDetail) (*ReportDetail, error)
	BulkUpsertDetails(ctx context.Context, reportID primitive.ObjectID, details []ReportDetail) (int, error)
	UpdateDetail(ctx context.Context, id primitive.ObjectID, patch bson.M) (*ReportDetail, error)
	DeleteDetail(ctx context.Context, id primitive.ObjectID) error
	DeleteDetailsByReport(ctx context.Context, reportID primitive.ObjectID) error

	// Usage checks consumed by the catalog features before deletes.
	MachineInUse(ctx context.Context, machineID string) (bool, error)
	ChecklistInUse(ctx context.Context, checklistID string) (bool, error)
	ItemInUse(ctx context.Context, itemID string) (bool, error)
	StateInUse(ctx context.Context, stateID string) (bool, error)
}

type ReportRepositoryImpl struct {
	Reports *mongo.Collection
	Details *mongo.Collection
}

func NewReportRepository(mongodb *database.MongodbDB) ReportRepository {
	return &ReportRepositoryImpl{
		Reports: mongodb.DB.Collection("reports"),
		Details: mongodb.DB.Collection("report_details"),
	}
}

func (r *ReportRepositoryImpl) Create(ctx context.Context, rep *Report) error {
	if rep.ID.IsZero() {
		rep.ID = primitive.NewObjectID()
	}
	_, err := r.Reports.InsertOne(ctx, rep)
	return err
}

func (r *ReportRepositoryImpl) FindByID(ctx context.Context, id string) (*Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var rep Report
	if err := r.Reports.FindOne(ctx, bson.M{"_id": oid}).Decode(&rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepositoryImpl) List(ctx context.Context, filter bson.M, skip, limit int64) ([]Report, error) {
	if filter == nil {
		filter = bson.M{}
	}
	opts := options.Find().SetSkip(skip).SetLimit(limit).SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.Reports.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reports []Report
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *ReportRepositoryImpl) Count(ctx context.Context, filter bson.M) (int64, error) {
	if filter == nil {
		filter = bson.M{}
	}
	return r.Reports.CountDocuments(ctx, filter)
}

func (r *ReportRepositoryImpl) Update(ctx context.Context, id string, patch bson.M) (*Report, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var rep Report
	err = r.Reports.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": patch}, opts).Decode(&rep)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepositoryImpl) SetFinishedAt(ctx context.Context, id primitive.ObjectID, at time.Time) (*Report, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	filter := bson.M{"_id": id, "finished_at": nil}

	var rep Report
	err := r.Reports.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{"finished_at": at}}, opts).Decode(&rep)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

func (r *ReportRepositoryImpl) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Reports.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ReportRepositoryImpl) FindDetail(ctx context.Context, id string) (*ReportDetail, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, mongo.ErrNoDocuments
	}

	var d ReportDetail
	if err := r.Details.FindOne(ctx, bson.M{"_id": oid}).Decode(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ReportRepositoryImpl) ListDetails(ctx context.Context, reportID primitive.ObjectID) ([]ReportDetail, error) {
	cursor, err := r.Details.Find(ctx, bson.M{"report_id": reportID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var details []ReportDetail
	if err := cursor.All(ctx, &details); err != nil {
		return nil, err
	}
	return details, nil
}

// UpsertDetail writes the detail keyed on (report, item): a second
// submission for the same item overwrites the first, never duplicates.
func (r *ReportRepositoryImpl) UpsertDetail(ctx context.Context, d *ReportDetail) (*ReportDetail, error) {
	filter := bson.M{"report_id": d.ReportID, "item_id": d.ItemID}
	update := bson.M{
		"$set": bson.M{
			"state_id":      d.StateID,
			"internal_note": d.InternalNote,
			"customer_note": d.CustomerNote,
		},
		"$setOnInsert": bson.M{
			"report_id": d.ReportID,
			"item_id":   d.ItemID,
		},
	}

	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out ReportDetail
	if err := r.Details.FindOneAndUpdate(ctx, filter, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkUpsertDetails writes a whole batch in one round trip so a batch is
// never torn across partial writes.
func (r *ReportRepositoryImpl) BulkUpsertDetails(ctx context.Context, reportID primitive.ObjectID, details []ReportDetail) (int, error) {
	if len(details) == 0 {
		return 0, nil
	}

	models := make([]mongo.WriteModel, 0, len(details))
	for _, d := range details {
		filter := bson.M{"report_id": reportID, "item_id": d.ItemID}
		update := bson.M{
			"$set": bson.M{
				"state_id":      d.StateID,
				"internal_note": d.InternalNote,
				"customer_note": d.CustomerNote,
			},
			"$setOnInsert": bson.M{
				"report_id": reportID,
				"item_id":   d.ItemID,
			},
		}
		models = append(models, mongo.NewUpdateOneModel().SetFilter(filter).SetUpdate(update).SetUpsert(true))
	}

	res, err := r.Details.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))
	if err != nil {
		return 0, err
	}
	return int(res.MatchedCount + res.UpsertedCount), nil
}

func (r *ReportRepositoryImpl) UpdateDetail(ctx context.Context, id primitive.ObjectID, patch bson.M) (*ReportDetail, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var d ReportDetail
	err := r.Details.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": patch}, opts).Decode(&d)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *ReportRepositoryImpl) DeleteDetail(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.Details.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (r *ReportRepositoryImpl) DeleteDetailsByReport(ctx context.Context, reportID primitive.ObjectID) error {
	_, err := r.Details.DeleteMany(ctx, bson.M{"report_id": reportID})
	return err
}

func (r *ReportRepositoryImpl) MachineInUse(ctx context.Context, machineID string) (bool, error) {
	return r.exists(ctx, r.Reports, "machine_id", machineID)
}

func (r *ReportRepositoryImpl) ChecklistInUse(ctx context.Context, checklistID string) (bool, error) {
	return r.exists(ctx, r.Reports, "checklist_id", checklistID)
}

func (r *ReportRepositoryImpl) ItemInUse(ctx context.Context, itemID string) (bool, error) {
	return r.exists(ctx, r.Details, "item_id", itemID)
}

func (r *ReportRepositoryImpl) StateInUse(ctx context.Context, stateID string) (bool, error) {
	return r.exists(ctx, r.Details, "state_id", stateID)
}

func (r *ReportRepositoryImpl) exists(ctx context.Context, coll *mongo.Collection, field, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	count, err := coll.CountDocuments(ctx, bson.M{field: oid}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
