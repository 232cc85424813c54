package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/splitpay/internal/domain/models"
)

const collectionName = "sales_ledgers"

// ledgerDocument is the single document holding one dataset.
type ledgerDocument struct {
	Key       string           `bson:"_id"`
	Records   []recordDocument `bson:"records"`
	UpdatedAt time.Time        `bson:"updated_at"`
}

type recordDocument struct {
	Date       string `bson:"date"`
	Amount     string `bson:"amount"`
	IsReceived *bool  `bson:"is_received,omitempty"`
}

// MongoDBRepository stores the sales collection as one document keyed by the dataset key.
type MongoDBRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
	datasetKey string
	logger     *zap.Logger
}

// NewMongoDBRepository connects to MongoDB and verifies the connection.
func NewMongoDBRepository(ctx context.Context, uri, dbName, datasetKey string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if datasetKey == "" {
		return nil, errors.New("dataset key must not be empty")
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client:     client,
		collection: client.Database(dbName).Collection(collectionName),
		datasetKey: datasetKey,
		logger:     logger,
	}, nil
}

// LoadAll reads every stored record. A missing dataset yields an empty slice.
func (r *MongoDBRepository) LoadAll(ctx context.Context) ([]models.SaleRecord, error) {
	var doc ledgerDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": r.datasetKey}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []models.SaleRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find ledger %s: %w", r.datasetKey, err)
	}

	records := make([]models.SaleRecord, 0, len(doc.Records))
	for _, rd := range doc.Records {
		records = append(records, r.fromDocument(rd))
	}
	return records, nil
}

// SaveAll replaces the stored dataset with records.
func (r *MongoDBRepository) SaveAll(ctx context.Context, records []models.SaleRecord) error {
	doc := ledgerDocument{
		Key:       r.datasetKey,
		Records:   toDocuments(records),
		UpdatedAt: time.Now().UTC(),
	}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.collection.ReplaceOne(ctx, bson.M{"_id": r.datasetKey}, doc, opts); err != nil {
		return fmt.Errorf("replace ledger %s: %w", r.datasetKey, err)
	}

	r.logger.Debug("ledger saved", zap.Int("records", len(records)))
	return nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

func toDocuments(records []models.SaleRecord) []recordDocument {
	docs := make([]recordDocument, len(records))
	for i, record := range records {
		received := record.IsReceived
		docs[i] = recordDocument{
			Date:       record.Date,
			Amount:     record.Amount.String(),
			IsReceived: &received,
		}
	}
	return docs
}

// fromDocument never drops a stored record. An unreadable amount counts as
// zero so the record keeps its position in the settlement schedule.
func (r *MongoDBRepository) fromDocument(doc recordDocument) models.SaleRecord {
	amount, err := decimal.NewFromString(doc.Amount)
	if err != nil {
		r.logger.Warn("stored amount is not numeric, using zero", zap.String("date", doc.Date), zap.String("amount", doc.Amount))
		amount = decimal.Zero
	}

	record := models.SaleRecord{Date: doc.Date, Amount: amount}
	if doc.IsReceived != nil {
		record.IsReceived = *doc.IsReceived
	}
	return record
}
