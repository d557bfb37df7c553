package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yashrajoria/storefront-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoAccountRepository keeps accounts in the "users" collection with the
// cart embedded as cartItems and order references as orders.
type MongoAccountRepository struct {
	collection *mongo.Collection
}

func NewMongoAccountRepository(db *mongo.Database) *MongoAccountRepository {
	return &MongoAccountRepository{
		collection: db.Collection("users"),
	}
}

// CreateIndexes installs the unique email index.
func (r *MongoAccountRepository) CreateIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return unavailable("create account indexes", err)
	}
	return nil
}

func (r *MongoAccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = models.NewID()
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	if account.CartItems == nil {
		account.CartItems = []models.CartItem{}
	}
	if account.Orders == nil {
		account.Orders = []string{}
	}
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	doc, err := newAccountDocument(account)
	if err != nil {
		return err
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return unavailable("insert account", err)
	}
	return nil
}

func (r *MongoAccountRepository) findOne(ctx context.Context, filter bson.M) (*models.Account, error) {
	var doc accountDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, unavailable("find account", err)
	}
	return doc.model(), nil
}

func (r *MongoAccountRepository) FindByID(ctx context.Context, id string) (*models.Account, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoAccountRepository) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))})
}

func (r *MongoAccountRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	n, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, unavailable("count accounts", err)
	}
	return n > 0, nil
}

func (r *MongoAccountRepository) SaveCart(ctx context.Context, id string, expectedVersion int64, items []models.CartItem) (int64, error) {
	oid, err := objectID(id)
	if err != nil {
		return 0, err
	}
	docs, err := newCartItemDocuments(items)
	if err != nil {
		return 0, err
	}

	filter := bson.M{"_id": oid, "version": expectedVersion}
	update := bson.M{
		"$set": bson.M{"cartItems": docs},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, unavailable("save cart", err)
	}
	if result.MatchedCount == 0 {
		found, err := r.exists(ctx, bson.M{"_id": oid})
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, ErrNotFound
		}
		return 0, ErrConflict
	}
	return expectedVersion + 1, nil
}

// ReserveCheckout sets pendingOrder when the version matches and no other
// checkout is pending.
func (r *MongoAccountRepository) ReserveCheckout(ctx context.Context, userID, orderID string, expectedVersion int64) (int64, error) {
	uid, err := objectID(userID)
	if err != nil {
		return 0, err
	}
	oid, err := objectID(orderID)
	if err != nil {
		return 0, err
	}

	filter := bson.M{"_id": uid, "version": expectedVersion, "pendingOrder": bson.M{"$exists": false}}
	update := bson.M{
		"$set": bson.M{"pendingOrder": oid},
		"$inc": bson.M{"version": 1},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return 0, unavailable("reserve checkout", err)
	}
	if result.MatchedCount == 0 {
		found, err := r.exists(ctx, bson.M{"_id": uid})
		if err != nil {
			return 0, err
		}
		if !found {
			return 0, ErrNotFound
		}
		return 0, ErrConflict
	}
	return expectedVersion + 1, nil
}

func (r *MongoAccountRepository) ReleaseCheckout(ctx context.Context, userID, orderID string) error {
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	oid, err := objectID(orderID)
	if err != nil {
		return err
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": uid, "pendingOrder": oid},
		bson.M{"$unset": bson.M{"pendingOrder": ""}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return unavailable("release checkout", err)
	}
	if result.MatchedCount == 0 {
		found, err := r.exists(ctx, bson.M{"_id": uid})
		if err != nil {
			return err
		}
		if !found {
			return ErrNotFound
		}
	}
	return nil
}

// FinalizeCheckout settles the loaded account and writes it back on the
// version it was read at. A concurrent write yields ErrConflict.
func (r *MongoAccountRepository) FinalizeCheckout(ctx context.Context, userID, orderID string, purchased []models.OrderItem) error {
	uid, err := objectID(userID)
	if err != nil {
		return err
	}
	oid, err := objectID(orderID)
	if err != nil {
		return err
	}
	account, err := r.findOne(ctx, bson.M{"_id": uid})
	if err != nil {
		return err
	}
	readVersion := account.Version
	if !account.SettleCheckout(orderID, purchased) {
		return nil
	}
	docs, err := newCartItemDocuments(account.CartItems)
	if err != nil {
		return err
	}

	update := bson.M{
		"$set":      bson.M{"cartItems": docs},
		"$addToSet": bson.M{"orders": oid},
		"$inc":      bson.M{"version": 1},
	}
	if account.PendingOrder == "" {
		update["$unset"] = bson.M{"pendingOrder": ""}
	}
	filter := bson.M{"_id": uid, "version": readVersion, "orders": bson.M{"$ne": oid}}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return unavailable("finalize checkout", err)
	}
	if result.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}
