package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yashrajoria/storefront-service/models"
	"github.com/yashrajoria/storefront-service/services"
)

func respondError(ctx *gin.Context, err *services.ServiceError) {
	ctx.JSON(err.StatusCode, gin.H{"error": err.Code, "message": err.Message})
}

func respondBindError(ctx *gin.Context, err error) {
	ctx.JSON(http.StatusBadRequest, gin.H{"error": services.CodeInvalidData, "message": bindingMessage(err)})
}

// pathID reads an id path parameter and answers 400 when it is malformed.
func pathID(ctx *gin.Context, param string) (string, bool) {
	id := ctx.Param(param)
	if !models.IsValidID(id) {
		respondError(ctx, services.InvalidInput("invalid %s", param))
		return "", false
	}
	return id, true
}

// parsePaginationParams extracts and validates pagination parameters
func parsePaginationParams(ctx *gin.Context) (int, int) {
	const maxLimit = 100
	const defaultPage = 1
	const defaultLimit = 10

	pageInt := defaultPage
	limitInt := defaultLimit

	if p, err := strconv.Atoi(ctx.DefaultQuery("page", "1")); err == nil && p > 0 {
		pageInt = p
	}
	if l, err := strconv.Atoi(ctx.DefaultQuery("limit", "10")); err == nil && l > 0 {
		limitInt = l
	}
	if limitInt > maxLimit {
		limitInt = maxLimit
	}
	return pageInt, limitInt
}
