package endpoints

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api/admin/control/packets"
	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
	"github.com/Nixie-Tech-LLC/billboard/internal/storage"
)

// multipart overhead allowed on top of the largest accepted file
const uploadSlack = 1 << 20

type MediaController struct {
	store   db.Store
	storage storage.Storage
	now     func() time.Time
}

func newMediaController(store db.Store, storage storage.Storage) *MediaController {
	return &MediaController{store: store, storage: storage, now: time.Now}
}

// MediaModule mounts all authenticated /media endpoints
func MediaModule(store db.Store, storage storage.Storage) api.Module {
	ctl := newMediaController(store, storage)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/media", ctl.listMedia)
		c.POST("/media", ctl.uploadMedia)
		c.DELETE("/media/:id", ctl.deleteMedia)
	})
}

func (m *MediaController) toMediaResponse(x model.MediaAsset) packets.MediaResponse {
	return packets.MediaResponse{
		ID:        x.ID,
		Type:      x.Type,
		Filename:  x.Filename,
		URL:       m.storage.PublicURL(x.StoragePath),
		FileSize:  x.FileSize,
		Width:     x.Width,
		Height:    x.Height,
		Duration:  x.Duration,
		CreatedAt: x.CreatedAt.Format(time.RFC3339),
	}
}

// GET /api/admin/media
func (m *MediaController) listMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	all, err := m.store.ListMediaByOwner(ctx.Request.Context(), user.ID)
	if err != nil {
		return nil, api.FromError(err, "could not list media")
	}
	out := make([]packets.MediaResponse, 0, len(all))
	for _, x := range all {
		out = append(out, m.toMediaResponse(x))
	}
	return out, nil
}

// POST /api/admin/media (multipart: file, optional duration in seconds)
func (m *MediaController) uploadMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, storage.MaxVideoBytes+uploadSlack)

	header, err := ctx.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		log.Warn().Int64("limit", tooLarge.Limit).Msg("[media] upload body too large")
		return nil, api.FromError(storage.ErrTooLarge, "")
	}
	if err != nil {
		log.Warn().Err(err).Msg("[media] upload without file")
		return nil, api.BadRequest("file is required")
	}

	var duration *float64
	if raw := ctx.PostForm("duration"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d <= 0 {
			return nil, api.BadRequest("duration must be a positive number of seconds")
		}
		duration = &d
	}

	src, err := header.Open()
	if err != nil {
		return nil, api.FromError(err, "could not read upload")
	}
	defer src.Close()

	upload, err := storage.Inspect(src, header.Size)
	if err != nil {
		return nil, api.FromError(err, "could not inspect upload")
	}
	if upload.MediaType != model.MediaTypeVideo {
		duration = nil
	}

	storagePath := storage.ObjectPath(user.ID, upload.Ext, m.now())
	if err := m.storage.SaveFile(ctx.Request.Context(), src, storagePath, upload.ContentType); err != nil {
		return nil, api.FromError(err, "could not store upload")
	}

	asset, err := m.store.CreateMedia(ctx.Request.Context(), model.MediaAsset{
		OwnerUserID: user.ID,
		Type:        upload.MediaType,
		StoragePath: storagePath,
		Filename:    filepath.Base(header.Filename),
		FileSize:    header.Size,
		Width:       upload.Width,
		Height:      upload.Height,
		Duration:    duration,
	})
	if err != nil {
		if delErr := m.storage.DeleteFile(ctx.Request.Context(), storagePath); delErr != nil {
			log.Warn().Err(delErr).Str("path", storagePath).Msg("[media] orphaned object after failed insert")
		}
		return nil, api.FromError(err, "could not save media")
	}
	log.Info().Str("media", asset.ID.String()).Str("type", asset.Type).Int64("bytes", asset.FileSize).Msg("[media] uploaded")
	return api.Created(m.toMediaResponse(asset)), nil
}

// DELETE /api/admin/media/:id
// The stored object goes first; if that fails the row is kept so the user
// can retry.
func (m *MediaController) deleteMedia(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	id, apiErr := parseID(ctx, "id")
	if apiErr != nil {
		return nil, apiErr
	}
	reqCtx := ctx.Request.Context()

	asset, err := m.store.GetMediaByID(reqCtx, id)
	if err != nil {
		return nil, api.FromError(err, "could not load media")
	}
	if asset.OwnerUserID != user.ID {
		log.Warn().Str("owner", asset.OwnerUserID.String()).Str("user", user.ID.String()).Msg("[media] forbidden deleteMedia")
		return nil, api.FromError(schedule.ErrForbidden, "")
	}

	inUse, err := m.store.MediaInUse(reqCtx, id)
	if err != nil {
		return nil, api.FromError(err, "could not delete media")
	}
	if inUse {
		return nil, api.FromError(schedule.ErrInUse, "")
	}

	if err := m.storage.DeleteFile(reqCtx, asset.StoragePath); err != nil {
		return nil, api.FromError(err, "could not delete media")
	}
	if err := m.store.DeleteMedia(reqCtx, id); err != nil {
		return nil, api.FromError(err, "could not delete media")
	}
	return gin.H{"message": "deleted"}, nil
}
