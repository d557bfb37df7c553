package main

import (
	"context"
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/yashrajoria/storefront-service/auth"
	"github.com/yashrajoria/storefront-service/catalog"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/repository"
	"golang.org/x/crypto/bcrypt"
)

type stores struct {
	products repository.ProductRepository
	accounts repository.AccountRepository
	orders   repository.OrderRepository
}

type summary struct {
	Products int
	Accounts int
	Orders   int
}

func hash(password string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t.UTC()
}

// seed writes the catalog, a few generated products, the demo users and the
// demo order history.
func seed(ctx context.Context, s stores, faker *gofakeit.Faker, extra, hashCost int) (*summary, error) {
	sum := &summary{}

	watches, err := catalog.Seed(ctx, s.products)
	if err != nil {
		return nil, err
	}
	products := make([]models.Product, 0, len(watches)+extra)
	products = append(products, watches...)
	for i := 0; i < extra; i++ {
		p := models.Product{
			Name:        faker.ProductName(),
			Price:       decimal.NewFromFloat(faker.Price(500, 50000)).Round(2),
			Img:         "/img/placeholder.png",
			Description: faker.ProductDescription(),
		}
		if err := s.products.Create(ctx, &p); err != nil {
			return nil, fmt.Errorf("create product %q: %w", p.Name, err)
		}
		products = append(products, p)
	}
	sum.Products = len(products)

	// John's order history is written first so the references exist when
	// his account is created.
	johnID := models.NewID()
	const johnAddress = "123 Main St, 12345 New York, United States"
	history := []models.Order{
		{
			UserID:     johnID,
			Items:      []models.OrderItem{models.NewOrderItem(products[0], 2), models.NewOrderItem(products[1], 5)},
			Address:    johnAddress,
			Date:       date("2023-01-01"),
			CardHolder: "John Doe",
			CardNumber: "1234567812345678",
		},
		{
			UserID:     johnID,
			Items:      []models.OrderItem{models.NewOrderItem(products[2], 1), models.NewOrderItem(products[3], 2)},
			Address:    johnAddress,
			Date:       date("2023-06-01"),
			CardHolder: "John Doe",
			CardNumber: "8765432187654321",
		},
	}
	orderIDs := make([]string, 0, len(history))
	for i := range history {
		if err := s.orders.Create(ctx, &history[i]); err != nil {
			return nil, fmt.Errorf("create order: %w", err)
		}
		orderIDs = append(orderIDs, history[i].ID)
	}
	sum.Orders = len(history)

	type demoUser struct {
		account  models.Account
		password string
	}
	users := []demoUser{
		{
			account: models.Account{
				ID: johnID, Email: "johndoe@example.com", Name: "John", Surname: "Doe",
				Address: johnAddress, Birthdate: date("1970-01-01"), Role: auth.RoleUser,
				CartItems: []models.CartItem{{ProductID: products[0].ID, Qty: 2}, {ProductID: products[1].ID, Qty: 5}},
				Orders:    orderIDs,
			},
			password: "1234",
		},
		{
			account: models.Account{
				Email: "janedoe@example.com", Name: "Jane", Surname: "Doe",
				Address: "456 Elm St, 67890 Los Angeles, United States", Birthdate: date("1985-05-15"), Role: auth.RoleUser,
				CartItems: []models.CartItem{{ProductID: products[1].ID, Qty: 1}, {ProductID: products[0].ID, Qty: 3}},
			},
			password: "5678",
		},
		{
			account: models.Account{
				Email: "admin@example.com", Name: faker.FirstName(), Surname: faker.LastName(),
				Address: faker.Street(), Birthdate: date("1990-03-01"), Role: auth.RoleAdmin,
			},
			password: "admin1234",
		},
	}
	for _, u := range users {
		a := u.account
		h, err := hash(u.password, hashCost)
		if err != nil {
			return nil, err
		}
		a.PasswordHash = h
		if err := s.accounts.Create(ctx, &a); err != nil {
			return nil, fmt.Errorf("create account %s: %w", a.Email, err)
		}
		sum.Accounts++
	}
	return sum, nil
}
