package endpoints

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/billboard/internal/db"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api"
	"github.com/Nixie-Tech-LLC/billboard/internal/http/api/tv/packets"
	"github.com/Nixie-Tech-LLC/billboard/internal/model"
	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

// source is a single-display PlaylistSource backed by a slice of bookings.
type source struct {
	db.Store

	display  model.Display
	hasMain  bool
	bookings []model.BookingDetail
	err      error
}

func (s *source) GetMainDisplay(context.Context) (model.Display, error) {
	if !s.hasMain {
		return model.Display{}, schedule.ErrNoMainDisplay
	}
	return s.display, nil
}

func (s *source) GetDisplayByID(_ context.Context, id uuid.UUID) (model.Display, error) {
	if id != s.display.ID {
		return model.Display{}, schedule.ErrDisplayNotFound
	}
	return s.display, nil
}

func (s *source) GetDisplayByActivationCode(_ context.Context, code string) (model.Display, error) {
	if code != s.display.ActivationCode {
		return model.Display{}, schedule.ErrDisplayNotFound
	}
	return s.display, nil
}

func (s *source) CurrentBooking(_ context.Context, _ uuid.UUID, at time.Time) (*model.BookingDetail, error) {
	return schedule.SelectCurrent(s.bookings, at), s.err
}

func (s *source) NextBooking(_ context.Context, _ uuid.UUID, at time.Time) (*model.BookingDetail, error) {
	return schedule.SelectNext(s.bookings, at), s.err
}

type cdn struct{}

func (cdn) PublicURL(p string) string { return "https://cdn.example.com/media/" + p }

var now = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

func newRouter(src *source) *gin.Engine {
	gin.SetMode(gin.TestMode)
	resolver := schedule.NewResolver(src, cdn{}).WithClock(func() time.Time { return now })
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/tv"},
		PlaylistModule(resolver),
		ActivationModule(src),
	)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestPlaylist(t *testing.T) {
	display := model.Display{ID: uuid.New(), Name: "Lobby", ActivationCode: "LOBBY-1", Timezone: "UTC"}
	dur := 15.0
	current := model.BookingDetail{
		Booking:       model.Booking{ID: uuid.New(), DisplayID: display.ID, StartTime: now.Add(-30 * time.Minute), EndTime: now.Add(30 * time.Minute)},
		Filename:      "Spring.MP4",
		MediaType:     model.MediaTypeVideo,
		StoragePath:   "owner/1.mp4",
		FileSize:      1024,
		MediaDuration: &dur,
	}
	next := model.BookingDetail{
		Booking:     model.Booking{ID: uuid.New(), DisplayID: display.ID, StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour)},
		Filename:    "poster.jpeg",
		MediaType:   model.MediaTypeImage,
		StoragePath: "owner/2.jpg",
	}

	t.Run("current and next slot", func(t *testing.T) {
		r := newRouter(&source{display: display, bookings: []model.BookingDetail{current, next}})
		w := get(r, "/api/tv/playlist?displayId="+display.ID.String())
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))

		var body struct {
			Slot map[string]any `json:"slot"`
			Next map[string]any `json:"next"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.NotNil(t, body.Slot)
		assert.Equal(t, current.ID.String(), body.Slot["id"])
		assert.Equal(t, float64(600), body.Slot["prefetch_seconds"])
		assert.Equal(t, float64(1), body.Slot["playlist_version"])
		assert.Equal(t, "2025-05-10T11:20:00Z", body.Slot["ready_at"])

		creative := body.Slot["creative"].(map[string]any)
		assert.Equal(t, "video/mp4", creative["content_type"])
		assert.Equal(t, "https://cdn.example.com/media/owner/1.mp4", creative["url"])
		assert.Nil(t, creative["sha256"])
		assert.Equal(t, float64(15), creative["duration_seconds"])

		require.NotNil(t, body.Next)
		assert.Equal(t, "image/jpeg", body.Next["creative"].(map[string]any)["content_type"])
	})

	t.Run("nothing scheduled returns nulls", func(t *testing.T) {
		r := newRouter(&source{display: display})
		w := get(r, "/api/tv/playlist?displayId="+display.ID.String())
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"slot":null,"next":null}`, w.Body.String())
	})

	t.Run("main display when no id", func(t *testing.T) {
		r := newRouter(&source{display: display, hasMain: true, bookings: []model.BookingDetail{next}})
		w := get(r, "/api/tv/playlist")
		require.Equal(t, http.StatusOK, w.Code)
		var p model.Playlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		assert.Nil(t, p.Slot)
		require.NotNil(t, p.Next)
	})

	t.Run("post body carries the display id", func(t *testing.T) {
		r := newRouter(&source{display: display, bookings: []model.BookingDetail{current}})
		raw, _ := json.Marshal(packets.PlaylistRequest{DisplayID: display.ID.String()})
		req := httptest.NewRequest(http.MethodPost, "/api/tv/playlist", bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var p model.Playlist
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
		require.NotNil(t, p.Slot)
		assert.Equal(t, current.ID, p.Slot.ID)
	})

	errorCases := []struct {
		name string
		src  *source
		path string
		want int
	}{
		{"unknown display", &source{display: display}, "/api/tv/playlist?displayId=" + uuid.NewString(), http.StatusNotFound},
		{"malformed display id", &source{display: display}, "/api/tv/playlist?displayId=lobby", http.StatusNotFound},
		{"no main display", &source{display: display}, "/api/tv/playlist", http.StatusNotFound},
		{"store failure", &source{display: display, err: errors.New("connection reset")}, "/api/tv/playlist?displayId=" + display.ID.String(), http.StatusInternalServerError},
	}
	for _, tt := range errorCases {
		t.Run(tt.name, func(t *testing.T) {
			w := get(newRouter(tt.src), tt.path)
			assert.Equal(t, tt.want, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
			assert.NotContains(t, body["error"], "connection reset")
		})
	}
}

func TestActivate(t *testing.T) {
	display := model.Display{ID: uuid.New(), Name: "Lobby", ActivationCode: "LOBBY-1", Timezone: "Europe/Paris"}
	r := newRouter(&source{display: display})

	w := get(r, "/api/tv/activate?code=LOBBY-1")
	require.Equal(t, http.StatusOK, w.Code)
	var resp packets.ActivationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, display.ID, resp.DisplayID)
	assert.Equal(t, "Europe/Paris", resp.Timezone)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/tv/activate?code=nope").Code)
	assert.Equal(t, http.StatusBadRequest, get(r, "/api/tv/activate").Code)
}
