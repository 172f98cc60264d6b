package schedule

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/billboard/internal/model"
)

func Test_Booker_CreateReservation(t *testing.T) {
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	user := uuid.New()

	tests := []struct {
		name    string
		start   time.Time
		end     time.Time
		media   func(s *memStore, display model.Display) uuid.UUID
		display func(s *memStore, display model.Display) uuid.UUID
		wantErr error
	}{
		{
			"normal usage",
			base.Add(time.Hour), base.Add(2 * time.Hour),
			nil, nil,
			nil,
		},
		{
			"end before start is rejected",
			base.Add(2 * time.Hour), base.Add(time.Hour),
			nil, nil,
			ErrInvalidRange,
		},
		{
			"zero-length interval is rejected",
			base.Add(time.Hour), base.Add(time.Hour),
			nil, nil,
			ErrInvalidRange,
		},
		{
			"overlapping the existing booking is a conflict",
			base.Add(59 * time.Minute), base.Add(61 * time.Minute),
			nil, nil,
			ErrSlotTaken,
		},
		{
			"unknown display",
			base.Add(time.Hour), base.Add(2 * time.Hour),
			nil,
			func(*memStore, model.Display) uuid.UUID { return uuid.New() },
			ErrDisplayNotFound,
		},
		{
			"someone else's media is treated as missing",
			base.Add(time.Hour), base.Add(2 * time.Hour),
			func(s *memStore, _ model.Display) uuid.UUID {
				return s.addMedia(uuid.New(), "theirs.png", model.MediaTypeImage).ID
			},
			nil,
			ErrMediaNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemStore()
			display := store.addDisplay("wall", false)
			media := store.addMedia(user, "mine.png", model.MediaTypeImage)
			// existing [10:00, 11:00)
			store.addBooking(display.ID, media.ID, base, base.Add(time.Hour))

			mediaID := media.ID
			if tt.media != nil {
				mediaID = tt.media(store, display)
			}
			displayID := display.ID
			if tt.display != nil {
				displayID = tt.display(store, display)
			}

			ann := &recordingAnnouncer{}
			b := NewBooker(store, ann)
			got, err := b.CreateReservation(context.Background(), user, displayID, mediaID, tt.start, tt.end)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 1, store.countFor(display.ID))
				assert.Empty(t, ann.events)
				return
			}
			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
			assert.Equal(t, tt.start.UTC(), got.StartTime)
			assert.Equal(t, 2, store.countFor(display.ID))
			require.Len(t, ann.events, 1)
			assert.Equal(t, EventBookingCreated, ann.events[0].Type)
		})
	}
}

func Test_Booker_CreateReservation_announcerFailureIsNotFatal(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	display := store.addDisplay("wall", false)
	media := store.addMedia(user, "mine.png", model.MediaTypeImage)

	b := NewBooker(store, &recordingAnnouncer{err: errors.New("broker down")})
	start := time.Now().Add(time.Hour)
	_, err := b.CreateReservation(context.Background(), user, display.ID, media.ID, start, start.Add(time.Hour))
	assert.NoError(t, err)
}

func Test_Booker_concurrentOverlappingCreates(t *testing.T) {
	store := newMemStore()
	store.insertDelay = 5 * time.Millisecond
	display := store.addDisplay("wall", false)
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	const callers = 8
	users := make([]uuid.UUID, callers)
	media := make([]uuid.UUID, callers)
	for i := range users {
		users[i] = uuid.New()
		media[i] = store.addMedia(users[i], "ad.png", model.MediaTypeImage).ID
	}

	b := NewBooker(store)
	errs := make([]error, callers)
	var wg sync.WaitGroup
	ready := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-ready
			// every interval overlaps [10:30, 11:00)
			s := start.Add(time.Duration(i) * time.Minute)
			_, errs[i] = b.CreateReservation(context.Background(), users[i], display.ID, media[i], s, s.Add(time.Hour))
		}(i)
	}
	close(ready)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrSlotTaken)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, store.countFor(display.ID))
}

func Test_Booker_HasConflict(t *testing.T) {
	store := newMemStore()
	user := uuid.New()
	display := store.addDisplay("wall", false)
	media := store.addMedia(user, "mine.png", model.MediaTypeImage)
	store.addBooking(display.ID, media.ID, at("10:00"), at("11:00"))
	b := NewBooker(store)
	ctx := context.Background()

	got, err := b.HasConflict(ctx, display.ID, at("11:00"), at("12:00"))
	require.NoError(t, err)
	assert.False(t, got)

	got, err = b.HasConflict(ctx, display.ID, at("10:59"), at("11:01"))
	require.NoError(t, err)
	assert.True(t, got)

	_, err = b.HasConflict(ctx, display.ID, at("12:00"), at("11:00"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = b.HasConflict(ctx, uuid.New(), at("11:00"), at("12:00"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_Booker_DeleteReservation(t *testing.T) {
	store := newMemStore()
	owner := uuid.New()
	display := store.addDisplay("wall", false)
	media := store.addMedia(owner, "mine.png", model.MediaTypeImage)
	booking := store.addBooking(display.ID, media.ID, at("10:00"), at("11:00"))
	ann := &recordingAnnouncer{}
	b := NewBooker(store, ann)
	ctx := context.Background()

	err := b.DeleteReservation(ctx, uuid.New(), booking.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, 1, store.countFor(display.ID))

	require.NoError(t, b.DeleteReservation(ctx, owner, booking.ID))
	assert.Equal(t, 0, store.countFor(display.ID))
	require.Len(t, ann.events, 1)
	assert.Equal(t, EventBookingDeleted, ann.events[0].Type)

	err = b.DeleteReservation(ctx, owner, booking.ID)
	assert.ErrorIs(t, err, ErrBookingNotFound)
}
