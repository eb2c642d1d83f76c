package share

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShare_Expired(t *testing.T) {
	expiry := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)
	s := Share{ExpiresAt: expiry}

	assert.False(t, s.Expired(expiry.Add(-time.Nanosecond)))
	assert.True(t, s.Expired(expiry))
	assert.True(t, s.Expired(expiry.Add(time.Second)))
}

func TestCreateRequest_Validate(t *testing.T) {
	req := CreateRequest{RequesterID: "u", YearMonth: "2024-06"}
	assert.NoError(t, req.Validate(7, 90))
	assert.Equal(t, 7, req.TTLDays)
	assert.Equal(t, "u", req.Target())

	bad := CreateRequest{YearMonth: "2024-6", TTLDays: 91}
	err := bad.Validate(7, 90)
	assert.ErrorContains(t, err, "year_month")
	assert.ErrorContains(t, err, "ttl_days")
}
