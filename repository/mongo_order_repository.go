package repository

import (
	"context"
	"errors"

	"github.com/yashrajoria/storefront-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoOrderRepository struct {
	collection *mongo.Collection
}

func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{
		collection: db.Collection("orders"),
	}
}

func (r *MongoOrderRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}},
	})
	if err != nil {
		return unavailable("create order indexes", err)
	}
	return nil
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = models.NewID()
	}
	doc, err := newOrderDocument(order)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return unavailable("insert order", err)
	}
	return nil
}

func (r *MongoOrderRepository) findOne(ctx context.Context, filter bson.M) (*models.Order, error) {
	var doc orderDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("find order", err)
	}
	return doc.model(), nil
}

func (r *MongoOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoOrderRepository) FindByIDAndUserID(ctx context.Context, id, userID string) (*models.Order, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(userID)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid, "userId": uid})
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M, opts ...*options.FindOptions) ([]models.Order, error) {
	cursor, err := r.collection.Find(ctx, filter, opts...)
	if err != nil {
		return nil, unavailable("find orders", err)
	}
	defer cursor.Close(ctx)

	var docs []orderDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, unavailable("decode orders", err)
	}
	orders := make([]models.Order, 0, len(docs))
	for i := range docs {
		orders = append(orders, *docs[i].model())
	}
	return orders, nil
}

func (r *MongoOrderRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Order, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return []models.Order{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": oids}})
}

func (r *MongoOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, unavailable("count orders", err)
	}
	findOptions := options.Find().
		SetSort(bson.D{{Key: "date", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))
	orders, err := r.find(ctx, bson.M{}, findOptions)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}
