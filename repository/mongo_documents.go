package repository

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront-service/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type productDocument struct {
	ID          primitive.ObjectID   `bson:"_id"`
	Name        string               `bson:"name"`
	Price       primitive.Decimal128 `bson:"price"`
	Img         string               `bson:"img,omitempty"`
	Description string               `bson:"description,omitempty"`
}

type cartItemDocument struct {
	Product primitive.ObjectID `bson:"product"`
	Qty     int                `bson:"qty"`
}

type accountDocument struct {
	ID        primitive.ObjectID   `bson:"_id"`
	Email     string               `bson:"email"`
	Password  string               `bson:"password"`
	Name      string               `bson:"name"`
	Surname   string               `bson:"surname"`
	Address   string               `bson:"address"`
	Birthdate time.Time            `bson:"birthdate"`
	Role      string               `bson:"role,omitempty"`
	CartItems []cartItemDocument   `bson:"cartItems"`
	Orders    []primitive.ObjectID `bson:"orders"`
	Pending   *primitive.ObjectID  `bson:"pendingOrder,omitempty"`
	Version   int64                `bson:"version"`
	CreatedAt time.Time            `bson:"created_at"`
}

type orderItemDocument struct {
	Product primitive.ObjectID   `bson:"product"`
	Qty     int                  `bson:"qty"`
	Price   primitive.Decimal128 `bson:"price"`
}

type orderDocument struct {
	ID         primitive.ObjectID  `bson:"_id"`
	UserID     primitive.ObjectID  `bson:"userId"`
	OrderItems []orderItemDocument `bson:"orderItems"`
	Address    string              `bson:"address"`
	Date       time.Time           `bson:"date"`
	CardHolder string              `bson:"cardHolder"`
	CardNumber string              `bson:"cardNumber"`
}

func toDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	v, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("convert price %s: %w", d.String(), err)
	}
	return v, nil
}

func fromDecimal128(v primitive.Decimal128) decimal.Decimal {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q: %w", id, ErrNotFound)
	}
	return oid, nil
}

func objectIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func newProductDocument(p *models.Product) (*productDocument, error) {
	oid, err := objectID(p.ID)
	if err != nil {
		return nil, err
	}
	price, err := toDecimal128(p.Price)
	if err != nil {
		return nil, err
	}
	return &productDocument{
		ID:          oid,
		Name:        p.Name,
		Price:       price,
		Img:         p.Img,
		Description: p.Description,
	}, nil
}

func (d *productDocument) model() models.Product {
	return models.Product{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Price:       fromDecimal128(d.Price),
		Img:         d.Img,
		Description: d.Description,
	}
}

func newCartItemDocuments(items []models.CartItem) ([]cartItemDocument, error) {
	docs := make([]cartItemDocument, 0, len(items))
	for _, item := range items {
		oid, err := objectID(item.ProductID)
		if err != nil {
			return nil, err
		}
		docs = append(docs, cartItemDocument{Product: oid, Qty: item.Qty})
	}
	return docs, nil
}

func pendingObjectID(id string) *primitive.ObjectID {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil
	}
	return &oid
}

func newAccountDocument(a *models.Account) (*accountDocument, error) {
	oid, err := objectID(a.ID)
	if err != nil {
		return nil, err
	}
	items, err := newCartItemDocuments(a.CartItems)
	if err != nil {
		return nil, err
	}
	return &accountDocument{
		ID:        oid,
		Email:     a.Email,
		Password:  a.PasswordHash,
		Name:      a.Name,
		Surname:   a.Surname,
		Address:   a.Address,
		Birthdate: a.Birthdate,
		Role:      a.Role,
		CartItems: items,
		Orders:    objectIDs(a.Orders),
		Pending:   pendingObjectID(a.PendingOrder),
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
	}, nil
}

func (d *accountDocument) model() *models.Account {
	a := &models.Account{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		PasswordHash: d.Password,
		Name:         d.Name,
		Surname:      d.Surname,
		Address:      d.Address,
		Birthdate:    d.Birthdate,
		Role:         d.Role,
		CartItems:    make([]models.CartItem, 0, len(d.CartItems)),
		Orders:       make([]string, 0, len(d.Orders)),
		Version:      d.Version,
		CreatedAt:    d.CreatedAt,
	}
	for _, item := range d.CartItems {
		a.CartItems = append(a.CartItems, models.CartItem{ProductID: item.Product.Hex(), Qty: item.Qty})
	}
	for _, oid := range d.Orders {
		a.Orders = append(a.Orders, oid.Hex())
	}
	if d.Pending != nil {
		a.PendingOrder = d.Pending.Hex()
	}
	return a
}

func newOrderDocument(o *models.Order) (*orderDocument, error) {
	oid, err := objectID(o.ID)
	if err != nil {
		return nil, err
	}
	uid, err := objectID(o.UserID)
	if err != nil {
		return nil, err
	}
	doc := &orderDocument{
		ID:         oid,
		UserID:     uid,
		OrderItems: make([]orderItemDocument, 0, len(o.Items)),
		Address:    o.Address,
		Date:       o.Date,
		CardHolder: o.CardHolder,
		CardNumber: o.CardNumber,
	}
	for _, item := range o.Items {
		pid, err := objectID(item.ProductID)
		if err != nil {
			return nil, err
		}
		price, err := toDecimal128(item.Price)
		if err != nil {
			return nil, err
		}
		doc.OrderItems = append(doc.OrderItems, orderItemDocument{Product: pid, Qty: item.Qty, Price: price})
	}
	return doc, nil
}

func (d *orderDocument) model() *models.Order {
	o := &models.Order{
		ID:         d.ID.Hex(),
		UserID:     d.UserID.Hex(),
		Items:      make([]models.OrderItem, 0, len(d.OrderItems)),
		Address:    d.Address,
		Date:       d.Date,
		CardHolder: d.CardHolder,
		CardNumber: d.CardNumber,
	}
	for _, item := range d.OrderItems {
		o.Items = append(o.Items, models.OrderItem{
			ProductID: item.Product.Hex(),
			Qty:       item.Qty,
			Price:     fromDecimal128(item.Price),
		})
	}
	return o
}
