package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/billboard/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

// APIError is what every endpoint returns on failure; it is rendered as
// {"error": Message} with status Code.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string { return e.Message }

// Response lets a handler pick a status other than 200.
type Response struct {
	Status int
	Body   any
}

func Created(body any) Response { return Response{Status: http.StatusCreated, Body: body} }

type HandlerFuncWithAuth func(ctx *gin.Context, user *model.User) (any, *APIError)
type HandlerFunc func(ctx *gin.Context) (any, *APIError)

func ResolveEndpointWithAuth(h HandlerFuncWithAuth) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		user, ok := middleware.GetCurrentUser(ctx)
		if !ok {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		result, apiErr := h(ctx, user)
		render(ctx, result, apiErr)
	}
}

func ResolveEndpoint(h HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		result, apiErr := h(ctx)
		render(ctx, result, apiErr)
	}
}

func render(ctx *gin.Context, result any, apiErr *APIError) {
	if apiErr != nil {
		ctx.JSON(apiErr.Code, gin.H{"error": apiErr.Message})
		return
	}
	if r, ok := result.(Response); ok {
		ctx.JSON(r.Status, r.Body)
		return
	}
	ctx.JSON(http.StatusOK, result)
}
