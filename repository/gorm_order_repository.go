package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront-service/models"
	"gorm.io/gorm"
)

type orderRow struct {
	ID         string         `gorm:"type:char(24);primaryKey"`
	UserID     string         `gorm:"type:char(24);not null;index"`
	Address    string         `gorm:"not null"`
	Date       time.Time      `gorm:"not null;index"`
	CardHolder string         `gorm:"not null"`
	CardNumber string         `gorm:"not null"`
	Items      []orderItemRow `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (orderRow) TableName() string { return "orders" }

type orderItemRow struct {
	ID        uint            `gorm:"primaryKey"`
	OrderID   string          `gorm:"type:char(24);not null;index"`
	Position  int             `gorm:"not null"`
	ProductID string          `gorm:"type:char(24);not null"`
	Qty       int             `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:numeric;not null"`
}

func (orderItemRow) TableName() string { return "order_items" }

func newOrderRow(o *models.Order) *orderRow {
	row := &orderRow{
		ID:         o.ID,
		UserID:     o.UserID,
		Address:    o.Address,
		Date:       o.Date,
		CardHolder: o.CardHolder,
		CardNumber: o.CardNumber,
		Items:      make([]orderItemRow, 0, len(o.Items)),
	}
	for i, item := range o.Items {
		row.Items = append(row.Items, orderItemRow{
			OrderID:   o.ID,
			Position:  i,
			ProductID: item.ProductID,
			Qty:       item.Qty,
			Price:     item.Price,
		})
	}
	return row
}

func (r *orderRow) model() models.Order {
	o := models.Order{
		ID:         r.ID,
		UserID:     r.UserID,
		Items:      make([]models.OrderItem, 0, len(r.Items)),
		Address:    r.Address,
		Date:       r.Date,
		CardHolder: r.CardHolder,
		CardNumber: r.CardNumber,
	}
	for _, item := range r.Items {
		o.Items = append(o.Items, models.OrderItem{ProductID: item.ProductID, Qty: item.Qty, Price: item.Price})
	}
	return o
}

// MigrateOrders creates the order tables.
func MigrateOrders(db *gorm.DB) error {
	return db.AutoMigrate(&orderRow{}, &orderItemRow{})
}

// GormOrderRepository implements OrderRepository on Postgres.
type GormOrderRepository struct {
	db *gorm.DB
}

func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func (r *GormOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = models.NewID()
	}
	if err := r.db.WithContext(ctx).Create(newOrderRow(order)).Error; err != nil {
		return unavailable("insert order", err)
	}
	return nil
}

func (r *GormOrderRepository) first(ctx context.Context, query string, args ...interface{}) (*models.Order, error) {
	var row orderRow
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where(query, args...).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable("find order", err)
	}
	o := row.model()
	return &o, nil
}

func (r *GormOrderRepository) FindByID(ctx context.Context, id string) (*models.Order, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *GormOrderRepository) FindByIDAndUserID(ctx context.Context, id, userID string) (*models.Order, error) {
	return r.first(ctx, "id = ? AND user_id = ?", id, userID)
}

func (r *GormOrderRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Order, error) {
	if len(ids) == 0 {
		return []models.Order{}, nil
	}
	var rows []orderRow
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, unavailable("find orders", err)
	}
	orders := make([]models.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].model())
	}
	return orders, nil
}

// FindAll retrieves all orders with pagination, newest first.
func (r *GormOrderRepository) FindAll(ctx context.Context, page, limit int) ([]models.Order, int64, error) {
	var rows []orderRow
	var total int64

	query := r.db.WithContext(ctx).Model(&orderRow{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, unavailable("count orders", err)
	}

	offset := (page - 1) * limit
	if err := query.
		Preload("Items", preloadItems).
		Offset(offset).
		Limit(limit).
		Order("date DESC").
		Find(&rows).Error; err != nil {
		return nil, 0, unavailable("list orders", err)
	}

	orders := make([]models.Order, 0, len(rows))
	for i := range rows {
		orders = append(orders, rows[i].model())
	}
	return orders, total, nil
}
