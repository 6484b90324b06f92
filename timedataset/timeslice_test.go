package timedataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStartEndTime(t *testing.T) {
	testData := map[string]struct {
		tSlice        TimeSlice
		expectedStart time.Time
		expectedEnd   time.Time
	}{
		"nil input": {
			tSlice: nil,
		},
		"valid": {
			tSlice:        TimeSlice(GenerateMonths(3, month(1970, 1))),
			expectedStart: month(1970, 1),
			expectedEnd:   month(1970, 3),
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expectedStart, td.tSlice.StartTime())
			assert.Equal(t, td.expectedEnd, td.tSlice.EndTime())
		})
	}
}

func TestMonthArithmetic(t *testing.T) {
	assert.Equal(t, month(2025, 2), AddMonths(month(2024, 12), 2))
	assert.Equal(t, month(2024, 11), AddMonths(time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC), -1))
	assert.Equal(t, 14, MonthsBetween(month(2023, 11), month(2025, 1)))
	assert.Equal(t, -1, MonthsBetween(month(2023, 1), month(2022, 12)))

	future := TimeSlice{month(2025, 10), month(2025, 11)}.Future(3)
	assert.Equal(t, []time.Time{month(2025, 12), month(2026, 1), month(2026, 2)}, future)
	assert.Nil(t, TimeSlice(nil).Future(3))
}
