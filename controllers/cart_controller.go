package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
)

// CartController handles HTTP requests for cart operations. Routes are
// mounted behind OwnerOnly("userId").
type CartController struct {
	cartService services.CartService
}

func NewCartController(cartService services.CartService) *CartController {
	return &CartController{cartService: cartService}
}

// GetCart handles GET /cart/:userId.
func (cc *CartController) GetCart(ctx *gin.Context) {
	cart, svcErr := cc.cartService.GetCart(ctx.Request.Context(), ctx.Param("userId"))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

// AddItem handles POST /cart/:userId.
func (cc *CartController) AddItem(ctx *gin.Context) {
	var req models.AddCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	userID := ctx.Param("userId")
	result, svcErr := cc.cartService.AddItem(ctx.Request.Context(), userID, req.ProductID, req.Qty)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	cc.respondMutation(ctx, userID, req.ProductID, result)
}

// SetItemQuantity handles PUT /cart/:userId/:productId.
func (cc *CartController) SetItemQuantity(ctx *gin.Context) {
	productID, ok := pathID(ctx, "productId")
	if !ok {
		return
	}
	var req models.SetCartItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	userID := ctx.Param("userId")
	result, svcErr := cc.cartService.SetItemQuantity(ctx.Request.Context(), userID, productID, req.Qty)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	cc.respondMutation(ctx, userID, productID, result)
}

// RemoveItem handles DELETE /cart/:userId/:productId.
func (cc *CartController) RemoveItem(ctx *gin.Context) {
	productID, ok := pathID(ctx, "productId")
	if !ok {
		return
	}
	cart, svcErr := cc.cartService.RemoveItem(ctx.Request.Context(), ctx.Param("userId"), productID)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, cart)
}

func (cc *CartController) respondMutation(ctx *gin.Context, userID, productID string, result *services.CartMutation) {
	if result.Created {
		ctx.Header("Location", "/cart/"+userID+"/"+productID)
		ctx.JSON(http.StatusCreated, result.Cart)
		return
	}
	ctx.JSON(http.StatusOK, result.Cart)
}
