package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"alphasim/internal/util"
)

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bars.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func Test_BarsFromCSV(t *testing.T) {
	t.Run("parses daily rows", func(t *testing.T) {
		path := writeCSV(t, `date,symbol,open,high,low,close,volume
2020-01-02,SPY,100.5,101.25,99.75,101.0,1000000
2020-01-03,SPY,101.0,102.0,100.5,101.5,900000
`)

		bars, err := BarsFromCSV(path, "SPY")
		require.NoError(t, err)
		require.Len(t, bars, 2)
		require.Equal(t, util.NewDate(2020, 1, 2), bars[0].Timestamp)
		require.Equal(t, "SPY", bars[0].Symbol)
		require.Equal(t, 100.5, bars[0].Open)
		require.Equal(t, 101.25, bars[0].High)
		require.Equal(t, 99.75, bars[0].Low)
		require.Equal(t, 101.0, bars[0].Close)
		require.Equal(t, 1_000_000.0, bars[0].Volume)
	})

	t.Run("missing symbol column falls back to the default", func(t *testing.T) {
		path := writeCSV(t, `date,open,high,low,close,volume
2020-01-02,100,101,99,100.5,500000
`)

		bars, err := BarsFromCSV(path, "QQQ")
		require.NoError(t, err)
		require.Len(t, bars, 1)
		require.Equal(t, "QQQ", bars[0].Symbol)
	})

	t.Run("accepts datetime and rfc3339 stamps", func(t *testing.T) {
		path := writeCSV(t, `date,symbol,open,high,low,close,volume
2020-01-02 09:30:00,SPY,100,101,99,100.5,500000
2020-01-02T10:30:00Z,SPY,100.5,101,100,100.75,400000
`)

		bars, err := BarsFromCSV(path, "SPY")
		require.NoError(t, err)
		require.Len(t, bars, 2)
		require.Equal(t, 9, bars[0].Timestamp.Hour())
		require.Equal(t, 10, bars[1].Timestamp.Hour())
	})

	t.Run("unparseable date names the row", func(t *testing.T) {
		path := writeCSV(t, `date,symbol,open,high,low,close,volume
01/02/2020,SPY,100,101,99,100.5,500000
`)

		_, err := BarsFromCSV(path, "SPY")
		require.ErrorContains(t, err, "row 1")
	})

	t.Run("missing file errors", func(t *testing.T) {
		_, err := BarsFromCSV(filepath.Join(t.TempDir(), "nope.csv"), "SPY")
		require.ErrorContains(t, err, "could not open")
	})
}
