// Package controllers handles HTTP request handling
package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	authz "github.com/yigit/unilink/internal/app/auth"
	"github.com/yigit/unilink/internal/middleware"
	"github.com/yigit/unilink/internal/pkg/apperrors"
)

// actorOrAbort returns the authenticated caller, writing a 401 when there is none
func actorOrAbort(ctx *gin.Context) (authz.Actor, bool) {
	actor, err := middleware.CurrentActor(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return authz.Actor{}, false
	}
	return actor, true
}

// idParam reads a positive integer path parameter, writing a 400 on failure
func idParam(ctx *gin.Context, name string) (int64, bool) {
	id, err := middleware.ParseIDParam(ctx, name)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return 0, false
	}
	return id, true
}

// int64Query reads an optional positive integer query parameter; absent means 0
func int64Query(ctx *gin.Context, name string) (int64, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, apperrors.NewValidationError(name, name+" must be a positive integer")
	}
	return v, nil
}

// boolQuery reads an optional boolean query parameter; absent means false
func boolQuery(ctx *gin.Context, name string) (bool, error) {
	raw := ctx.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.NewValidationError(name, name+" must be true or false")
	}
	return v, nil
}
