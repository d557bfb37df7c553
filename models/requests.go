package models

// AddCartItemRequest is the body of POST /cart/:userId.
type AddCartItemRequest struct {
	ProductID string `json:"productId" binding:"required,objectid"`
	Qty       int    `json:"qty"`
}

// SetCartItemRequest is the body of PUT /cart/:userId/:productId.
type SetCartItemRequest struct {
	Qty int `json:"qty"`
}

type CheckoutRequest struct {
	Address    string `json:"address" binding:"required"`
	CardHolder string `json:"cardHolder" binding:"required"`
	CardNumber string `json:"cardNumber" binding:"required"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	Name      string `json:"name" binding:"required"`
	Surname   string `json:"surname" binding:"required"`
	Address   string `json:"address" binding:"required"`
	Birthdate string `json:"birthdate" binding:"required"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
