package endpoints

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api/admin/auth/packets"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

// AuthPublicModule mounts public auth endpoints (/auth/signup, /auth/login).
// Accounts whose email is listed in operatorEmails become operators on signup.
func AuthPublicModule(jwtSecret string, store db.Store, operatorEmails []string) api.Module {
	ctl := newAccountManager(jwtSecret, store, operatorEmails)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/signup", ctl.userSignup)
		c.PUBLIC_POST("/auth/login", ctl.userLogin)
	})
}

// AuthSessionModule mounts private session/profile endpoints (JWT required)
func AuthSessionModule(jwtSecret string, store db.Store) api.Module {
	ctl := newAccountManager(jwtSecret, store, nil)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/current_profile", ctl.getCurrentProfile)
		c.PUT("/auth/current_profile", ctl.updateCurrentProfile)
	})
}

type AccountManager struct {
	jwtSecret string
	store     db.Store
	operators map[string]bool
}

func newAccountManager(secret string, store db.Store, operatorEmails []string) *AccountManager {
	operators := make(map[string]bool, len(operatorEmails))
	for _, e := range operatorEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			operators[e] = true
		}
	}
	return &AccountManager{jwtSecret: secret, store: store, operators: operators}
}

func toProfileResponse(u *model.User) packets.ProfileResponse {
	return packets.ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
		UpdatedAt: u.UpdatedAt.Format(time.RFC3339),
	}
}

// POST /api/admin/auth/signup
func (a *AccountManager) userSignup(ctx *gin.Context) (any, *api.APIError) {
	var request packets.SignupRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	reqCtx := ctx.Request.Context()
	email := strings.ToLower(strings.TrimSpace(request.Email))

	if existing, _ := a.store.GetUserByEmail(reqCtx, email); existing != nil {
		log.Warn().Str("email", email).Msg("signup email already registered")
		return nil, &api.APIError{Code: http.StatusConflict, Message: "email already registered"}
	}

	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not hash password"}
	}

	// the role goes in with the row so a failed signup leaves nothing behind
	role := model.RoleUser
	if a.operators[email] {
		role = model.RoleOperator
	}

	userID, err := a.store.CreateUser(reqCtx, email, hashed, request.Name, role)
	if err != nil {
		if errors.Is(err, schedule.ErrDuplicate) {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "email already registered"}
		}
		return nil, api.FromError(err, "could not create user")
	}
	if role == model.RoleOperator {
		log.Info().Str("email", email).Msg("operator account created")
	}

	token, err := middleware.GenerateJWT(userID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return api.Created(packets.TokenResponse{Token: token}), nil
}

// POST /api/admin/auth/login
func (a *AccountManager) userLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}

	email := strings.ToLower(strings.TrimSpace(request.Email))
	foundUser, err := a.store.GetUserByEmail(ctx.Request.Context(), email)
	if err != nil || foundUser == nil || !middleware.CheckPassword(foundUser.HashedPassword, request.Password) {
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: middleware.ErrInvalidCredentials.Error()}
	}

	token, err := middleware.GenerateJWT(foundUser.ID, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return packets.TokenResponse{Token: token}, nil
}

// GET /api/admin/auth/current_profile
func (a *AccountManager) getCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	return toProfileResponse(user), nil
}

// PUT /api/admin/auth/current_profile
func (a *AccountManager) updateCurrentProfile(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var request packets.UpdateCurrentProfileRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, api.BadRequest(err.Error())
	}
	reqCtx := ctx.Request.Context()
	email := strings.ToLower(strings.TrimSpace(request.Email))

	if email != user.Email {
		if other, _ := a.store.GetUserByEmail(reqCtx, email); other != nil {
			return nil, &api.APIError{Code: http.StatusConflict, Message: "email already in use"}
		}
	}

	if err := a.store.UpdateUserProfile(reqCtx, user.ID, email, request.Name); err != nil {
		return nil, api.FromError(err, "could not update profile")
	}

	updated, err := a.store.GetUserByID(reqCtx, user.ID)
	if err != nil {
		return nil, api.FromError(err, "could not fetch updated profile")
	}

	return toProfileResponse(updated), nil
}
