package repository

import (
	"path/filepath"
	"testing"

	"niftyalpha/internal/domain"
	"niftyalpha/internal/util"

	"github.com/stretchr/testify/require"
)

func openTestRepository(t *testing.T) *PriceRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "prices.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testBars() []domain.Bar {
	return []domain.Bar{
		{Date: util.NewDate(2024, 1, 1), Open: 99, High: 102, Low: 98, Close: 100, AdjClose: 100, Volume: 1000},
		{Date: util.NewDate(2024, 1, 2), Open: 100, High: 104, Low: 100, Close: 103, AdjClose: 103, Volume: 1200},
		{Date: util.NewDate(2024, 1, 3), Open: 103, High: 103, Low: 101, Close: 102, AdjClose: 102, Volume: 900},
	}
}

func Test_PriceRepository_RoundTrip(t *testing.T) {
	repo := openTestRepository(t)

	require.NoError(t, repo.Add("RELIANCE.NS", testBars()))

	series, err := repo.List("RELIANCE.NS", util.NewDate(2024, 1, 1), util.NewDate(2024, 1, 31))
	require.NoError(t, err)
	require.Equal(t, "RELIANCE.NS", series.Symbol)
	require.Equal(t, 3, series.Len())
	require.Equal(t, []float64{100, 103, 102}, series.Closes())
	require.Equal(t, int64(1200), series.Bars[1].Volume)
}

func Test_PriceRepository_Upsert(t *testing.T) {
	repo := openTestRepository(t)
	require.NoError(t, repo.Add("TCS.NS", testBars()))

	// re-adding the same dates with corrected closes replaces, never
	// duplicates
	revised := testBars()
	revised[2].Close = 105
	require.NoError(t, repo.Add("TCS.NS", revised))

	series, err := repo.List("TCS.NS", util.NewDate(2024, 1, 1), util.NewDate(2024, 1, 31))
	require.NoError(t, err)
	require.Equal(t, 3, series.Len())
	require.Equal(t, 105.0, series.Bars[2].Close)
}

func Test_PriceRepository_ListWindow(t *testing.T) {
	repo := openTestRepository(t)
	require.NoError(t, repo.Add("INFY.NS", testBars()))

	series, err := repo.List("INFY.NS", util.NewDate(2024, 1, 2), util.NewDate(2024, 1, 2))
	require.NoError(t, err)
	require.Equal(t, 1, series.Len())
	require.Equal(t, 103.0, series.Bars[0].Close)

	empty, err := repo.List("INFY.NS", util.NewDate(2025, 1, 1), util.NewDate(2025, 12, 31))
	require.NoError(t, err)
	require.Equal(t, 0, empty.Len())
}

func Test_PriceRepository_Symbols(t *testing.T) {
	repo := openTestRepository(t)
	require.NoError(t, repo.Add("TCS.NS", testBars()))
	require.NoError(t, repo.Add("INFY.NS", testBars()))

	symbols, err := repo.Symbols()
	require.NoError(t, err)
	require.Equal(t, []string{"INFY.NS", "TCS.NS"}, symbols)
}

func Test_PriceRepository_LatestDate(t *testing.T) {
	repo := openTestRepository(t)

	_, ok, err := repo.LatestDate("TCS.NS")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Add("TCS.NS", testBars()))
	latest, ok, err := repo.LatestDate("TCS.NS")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, util.NewDate(2024, 1, 3), latest)
}
