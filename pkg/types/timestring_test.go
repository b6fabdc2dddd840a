package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeString(t *testing.T) {
	moment := time.Date(2026, 9, 15, 10, 30, 45, 0, time.UTC)
	assert.Equal(t, "10:30", NewTimeString(moment).String())
}

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:05")
	require.NoError(t, err)
	assert.Equal(t, "09:05", ts.String())

	_, err = NewTimeStringFromString("25:00")
	assert.Error(t, err)

	_, err = NewTimeStringFromString("")
	assert.Error(t, err)
}

func TestMinuteOfDay(t *testing.T) {
	ts := TimeString("10:30")
	minute, err := ts.MinuteOfDay()
	require.NoError(t, err)
	assert.Equal(t, 630, minute)

	assert.Equal(t, TimeString("10:30"), FromMinuteOfDay(630))
	assert.Equal(t, TimeString("00:00"), FromMinuteOfDay(0))
	assert.Equal(t, TimeString("23:59"), FromMinuteOfDay(1439))
}

func TestAddMinutes(t *testing.T) {
	ts := TimeString("10:00")

	result, err := ts.AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("11:30"), result)

	// Ровно до конца суток допустимо
	result, err = TimeString("23:00").AddMinutes(60)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), result)

	// Переход за полночь запрещен
	_, err = TimeString("23:30").AddMinutes(45)
	assert.Error(t, err)
}

func TestIsBeforeIsAfter(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("10:00"))
	assert.False(t, TimeString("10:00").IsBefore("10:00"))
	assert.True(t, TimeString("18:00").IsAfter("09:30"))
}

func TestScanNormalizesSeconds(t *testing.T) {
	var ts TimeString
	require.NoError(t, ts.Scan("10:30:00"))
	assert.Equal(t, TimeString("10:30"), ts)

	require.NoError(t, ts.Scan([]byte("08:15:59")))
	assert.Equal(t, TimeString("08:15"), ts)
}
