package domain

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBookingFilter_Bounds(t *testing.T) {
	tests := []struct {
		name       string
		page, size int32
		wantLimit  int64
		wantOffset int64
		wantErr    bool
	}{
		{name: "Defaults", wantLimit: DefaultPageSize, wantOffset: 0},
		{name: "Second page", page: 2, size: 10, wantLimit: 10, wantOffset: 10},
		{name: "Oversized page is capped", page: 3, size: math.MaxInt32, wantLimit: MaxPageSize, wantOffset: 2 * MaxPageSize},
		{name: "Last reachable page", page: math.MaxInt32/MaxPageSize + 1, size: MaxPageSize, wantLimit: MaxPageSize, wantOffset: math.MaxInt32 / MaxPageSize * MaxPageSize},
		{name: "Offset past int32", page: math.MaxInt32, size: MaxPageSize, wantErr: true},
		{name: "Negative page", page: -1, size: 10, wantErr: true},
		{name: "Negative size", page: 1, size: -5, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, offset, err := BookingFilter{Page: tt.page, PageSize: tt.size}.Bounds()
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
