package reports_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"topupdesk/internal/daterange"
	"topupdesk/internal/orders"
	"topupdesk/internal/reports"
	"topupdesk/internal/testsupport"
)

func TestRecomputeDailyStats(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	r := daterange.Range{
		From: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC),
	}

	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 5, 2, 6, 0, 0, 0, time.UTC),
		Status:    orders.StatusCompleted, TotalPaid: "100.00", Cost: "40.00",
	})
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
		Status:    orders.StatusCompleted, TotalPaid: "50.00", Cost: "10.00",
	})
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 5, 4, 6, 0, 0, 0, time.UTC),
		Status:    orders.StatusPending, TotalPaid: "75.00", Cost: "60.00",
	})

	count, err := reports.RecomputeDailyStats(logger, db, r)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	stats, err := reports.GetDailyStats(db, r)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	assert.Equal(t, "2025-05-02", stats[0].Day)
	assert.Equal(t, 2, stats[0].OrdersCount)
	assert.Equal(t, "150", stats[0].Revenue.String())
	assert.Equal(t, "100", stats[0].Profit.String())
	assert.Equal(t, "2025-05-04", stats[1].Day)
	assert.Equal(t, 1, stats[1].OrdersCount)
}

func TestRecomputeDailyStatsMidDayStartKeepsWholeDay(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	full := daterange.Range{
		From: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 5, 31, 23, 59, 59, 0, time.UTC),
	}

	// Both orders fall on Bangkok day 2025-05-02; one sits before a
	// 09:00 UTC window start.
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 5, 2, 2, 0, 0, 0, time.UTC),
		Status:    orders.StatusCompleted, TotalPaid: "100.00", Cost: "40.00",
	})
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 5, 2, 10, 0, 0, 0, time.UTC),
		Status:    orders.StatusCompleted, TotalPaid: "50.00", Cost: "10.00",
	})

	_, err := reports.RecomputeDailyStats(logger, db, full)
	require.NoError(t, err)

	// A sliding window whose start lands mid-day must not rewrite the
	// boundary day from only part of its orders.
	partial := daterange.Range{
		From: time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC),
		To:   full.To,
	}
	_, err = reports.RecomputeDailyStats(logger, db, partial)
	require.NoError(t, err)

	stats, err := reports.GetDailyStats(db, full)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "2025-05-02", stats[0].Day)
	assert.Equal(t, 2, stats[0].OrdersCount)
	assert.Equal(t, "150", stats[0].Revenue.String())
}

func TestRecomputeDailyStatsIsIdempotent(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	r := daterange.Range{
		From: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2025, 6, 30, 23, 59, 59, 0, time.UTC),
	}
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2025, 6, 10, 6, 0, 0, 0, time.UTC),
		TotalPaid: "10.00", Cost: "5.00",
	})

	_, err := reports.RecomputeDailyStats(logger, db, r)
	require.NoError(t, err)
	_, err = reports.RecomputeDailyStats(logger, db, r)
	require.NoError(t, err)

	stats, err := reports.GetDailyStats(db, r)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, 1, stats[0].OrdersCount)
}

func TestDeleteStatsBefore(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	logger := testsupport.GetLogger()

	old := daterange.Range{
		From: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2023, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	testsupport.CreateTestOrder(t, db, testsupport.TestOrderInput{
		OrderDate: time.Date(2023, 1, 5, 6, 0, 0, 0, time.UTC),
		TotalPaid: "10.00", Cost: "5.00",
	})
	_, err := reports.RecomputeDailyStats(logger, db, old)
	require.NoError(t, err)

	affected, err := reports.DeleteStatsBefore(logger, db, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	stats, err := reports.GetDailyStats(db, old)
	require.NoError(t, err)
	assert.Empty(t, stats)
}
