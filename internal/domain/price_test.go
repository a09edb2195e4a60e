package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func Test_NewPriceSeries(t *testing.T) {
	t.Run("ordered bars accepted", func(t *testing.T) {
		series, err := NewPriceSeries("AAA.NS", []Bar{
			{Date: date(2024, 1, 1), Close: 100},
			{Date: date(2024, 1, 2), Close: 101},
		})
		require.NoError(t, err)
		require.Equal(t, 2, series.Len())
	})

	t.Run("duplicate dates rejected", func(t *testing.T) {
		_, err := NewPriceSeries("AAA.NS", []Bar{
			{Date: date(2024, 1, 1), Close: 100},
			{Date: date(2024, 1, 1), Close: 101},
		})
		require.Error(t, err)
	})

	t.Run("out of order dates rejected", func(t *testing.T) {
		_, err := NewPriceSeries("AAA.NS", []Bar{
			{Date: date(2024, 1, 2), Close: 100},
			{Date: date(2024, 1, 1), Close: 101},
		})
		require.Error(t, err)
	})

	t.Run("missing symbol rejected", func(t *testing.T) {
		_, err := NewPriceSeries("", nil)
		require.Error(t, err)
	})
}

func Test_PriceSeries_Through(t *testing.T) {
	series, err := NewPriceSeries("AAA.NS", []Bar{
		{Date: date(2024, 1, 1), Close: 100},
		{Date: date(2024, 1, 2), Close: 101},
		{Date: date(2024, 1, 5), Close: 102},
	})
	require.NoError(t, err)

	t.Run("inclusive cut", func(t *testing.T) {
		require.Equal(t, 2, series.Through(date(2024, 1, 2)).Len())
	})

	t.Run("date between bars", func(t *testing.T) {
		require.Equal(t, 2, series.Through(date(2024, 1, 4)).Len())
	})

	t.Run("before first bar", func(t *testing.T) {
		require.Equal(t, 0, series.Through(date(2023, 12, 31)).Len())
	})

	t.Run("after last bar", func(t *testing.T) {
		require.Equal(t, 3, series.Through(date(2024, 2, 1)).Len())
		require.Equal(t, []float64{100, 101, 102}, series.Closes())
	})
}

func Test_PriceSeries_LastBar(t *testing.T) {
	empty, err := NewPriceSeries("AAA.NS", nil)
	require.NoError(t, err)
	_, ok := empty.LastBar()
	require.False(t, ok)

	series, err := NewPriceSeries("AAA.NS", []Bar{{Date: date(2024, 1, 1), Close: 100}})
	require.NoError(t, err)
	bar, ok := series.LastBar()
	require.True(t, ok)
	require.Equal(t, 100.0, bar.Close)
}
