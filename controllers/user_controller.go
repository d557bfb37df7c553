package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
)

type UserController struct {
	userService services.UserService
}

func NewUserController(userService services.UserService) *UserController {
	return &UserController{userService: userService}
}

// Register handles POST /users.
func (uc *UserController) Register(ctx *gin.Context) {
	var req models.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	id, svcErr := uc.userService.Register(ctx.Request.Context(), &req)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.Header("Location", "/users/"+id)
	ctx.JSON(http.StatusCreated, gin.H{"_id": id})
}

// Login handles POST /users/login.
func (uc *UserController) Login(ctx *gin.Context) {
	var req models.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		respondBindError(ctx, err)
		return
	}

	token, svcErr := uc.userService.Authenticate(ctx.Request.Context(), req.Email, req.Password)
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

// GetProfile handles GET /users/:userId (owner only).
func (uc *UserController) GetProfile(ctx *gin.Context) {
	profile, svcErr := uc.userService.GetProfile(ctx.Request.Context(), ctx.Param("userId"))
	if svcErr != nil {
		respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}
