package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/Nixie-Tech-LLC/billboard/internal/schedule"
)

func Test_translateWriteError(t *testing.T) {
	other := errors.New("connection refused")
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"exclusion violation is a taken slot", &pq.Error{Code: "23P01", Constraint: "bookings_no_overlap"}, schedule.ErrSlotTaken},
		{"wrapped exclusion violation", fmt.Errorf("insert: %w", &pq.Error{Code: "23P01"}), schedule.ErrSlotTaken},
		{"range check", &pq.Error{Code: "23514", Constraint: "bookings_valid_range"}, schedule.ErrInvalidRange},
		{"unique violation", &pq.Error{Code: "23505", Constraint: "users_email_key"}, schedule.ErrDuplicate},
		{"missing display", &pq.Error{Code: "23503", Constraint: "bookings_display_id_fkey"}, schedule.ErrDisplayNotFound},
		{"missing media", &pq.Error{Code: "23503", Constraint: "bookings_media_asset_id_fkey"}, schedule.ErrMediaNotFound},
		{"missing user", &pq.Error{Code: "23503", Constraint: "bookings_user_id_fkey"}, schedule.ErrUserNotFound},
		{"unrelated pq error passes through", &pq.Error{Code: "42P01"}, nil},
		{"non-pq error passes through", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateWriteError(tt.err)
			if tt.want == nil {
				assert.Equal(t, tt.err, got)
				return
			}
			assert.ErrorIs(t, got, tt.want)
		})
	}
}

func Test_translateDeleteError(t *testing.T) {
	assert.ErrorIs(t, translateDeleteError(&pq.Error{Code: "23503"}), schedule.ErrInUse)
	boom := errors.New("boom")
	assert.Equal(t, boom, translateDeleteError(boom))
}
