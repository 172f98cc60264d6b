package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/billboard/internal/config"
	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/billboard/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/billboard/internal/http/api/admin/control/endpoints"
	clientapi "github.com/Nixie-Tech-LLC/billboard/internal/http/api/tv/endpoints"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
	"github.com/Nixie-Tech-LLC/billboard/internal/storage"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(
	r *gin.Engine,
	env Environment,
	store db.Store,
	storageSystem storage.Storage,
	booker *schedule.Booker,
	playlists clientapi.PlaylistResolver,
	displayListeners ...adminapi.MainDisplayListener,
) {
	// CORS; preflight requests are answered with 204
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"DELETE",
			"OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
			"apikey",
			"X-Client-Info",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		authapi.AuthPublicModule(env.SecretKey, store, config.List(env.OperatorEmails)),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: env.SecretKey,
		Users:     store,
	},
		// control modules
		adminapi.DisplayModule(store, displayListeners...),
		adminapi.BookingModule(store, booker),
		adminapi.MediaModule(store, storageSystem),
		// session endpoints that require auth
		authapi.AuthSessionModule(env.SecretKey, store),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/tv",
	},
		clientapi.PlaylistModule(playlists),
		clientapi.ActivationModule(store),
	)

	// Static content
	if !env.UseSpaces {
		r.Static("/uploads", env.UploadDir)
	}
}
