package models

import "time"

// CartItem is one line of the cart embedded in an Account.
type CartItem struct {
	ProductID string `json:"productId"`
	Qty       int    `json:"qty"`
}

// Account is the aggregate that owns a user's cart and order references.
// The cart is only changed through the methods below.
type Account struct {
	ID           string     `json:"_id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Name         string     `json:"name"`
	Surname      string     `json:"surname"`
	Address      string     `json:"address"`
	Birthdate    time.Time  `json:"birthdate"`
	Role         string     `json:"-"`
	CartItems    []CartItem `json:"cartItems"`
	Orders       []string   `json:"orders"`
	PendingOrder string     `json:"-"`
	Version      int64      `json:"-"`
	CreatedAt    time.Time  `json:"-"`
}

func (a *Account) cartIndex(productID string) int {
	for i, item := range a.CartItems {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

// AddToCart increases the quantity of productID by qty, appending a new
// entry when the product is not in the cart yet. Returns true when appended.
func (a *Account) AddToCart(productID string, qty int) bool {
	if i := a.cartIndex(productID); i >= 0 {
		a.CartItems[i].Qty += qty
		return false
	}
	a.CartItems = append(a.CartItems, CartItem{ProductID: productID, Qty: qty})
	return true
}

// SetCartQuantity replaces the quantity of productID, appending a new entry
// when the product is not in the cart yet. Returns true when appended.
func (a *Account) SetCartQuantity(productID string, qty int) bool {
	if i := a.cartIndex(productID); i >= 0 {
		a.CartItems[i].Qty = qty
		return false
	}
	a.CartItems = append(a.CartItems, CartItem{ProductID: productID, Qty: qty})
	return true
}

// RemoveFromCart drops the entry for productID. Returns false if there was none.
func (a *Account) RemoveFromCart(productID string) bool {
	i := a.cartIndex(productID)
	if i < 0 {
		return false
	}
	a.CartItems = append(a.CartItems[:i], a.CartItems[i+1:]...)
	return true
}

// HasOrder reports whether orderID is already referenced by the account.
func (a *Account) HasOrder(orderID string) bool {
	for _, id := range a.Orders {
		if id == orderID {
			return true
		}
	}
	return false
}

// SettleCheckout takes the purchased quantities out of the cart, records
// orderID and clears the pending marker for it. Lines added or raised after
// the snapshot keep the difference. Returns false when orderID is already
// referenced.
func (a *Account) SettleCheckout(orderID string, purchased []OrderItem) bool {
	if a.HasOrder(orderID) {
		return false
	}
	for _, item := range purchased {
		i := a.cartIndex(item.ProductID)
		if i < 0 {
			continue
		}
		if a.CartItems[i].Qty <= item.Qty {
			a.CartItems = append(a.CartItems[:i], a.CartItems[i+1:]...)
			continue
		}
		a.CartItems[i].Qty -= item.Qty
	}
	if a.CartItems == nil {
		a.CartItems = []CartItem{}
	}
	a.Orders = append(a.Orders, orderID)
	if a.PendingOrder == orderID {
		a.PendingOrder = ""
	}
	return true
}

// Profile is the public projection of an Account.
type Profile struct {
	ID        string    `json:"_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Surname   string    `json:"surname"`
	Address   string    `json:"address"`
	Birthdate time.Time `json:"birthdate"`
}

func (a *Account) Profile() Profile {
	return Profile{
		ID:        a.ID,
		Email:     a.Email,
		Name:      a.Name,
		Surname:   a.Surname,
		Address:   a.Address,
		Birthdate: a.Birthdate,
	}
}
