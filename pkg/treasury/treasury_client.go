// Package treasury fetches US treasury yield curve snapshots, used to
// seed the backtest's risk-free rate from real market data.
package treasury

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// YieldCurve maps tenor in months to an annualized fractional rate.
type YieldCurve struct {
	Rates map[int]float64
}

// RateForTenor returns the rate for the given tenor, interpolating
// between the nearest observed tenors and clamping outside the curve.
func (c YieldCurve) RateForTenor(months int) float64 {
	if rate, ok := c.Rates[months]; ok {
		return rate
	}

	tenors := make([]int, 0, len(c.Rates))
	for tenor := range c.Rates {
		tenors = append(tenors, tenor)
	}
	sort.Ints(tenors)

	if len(tenors) == 0 {
		return 0
	}
	if months < tenors[0] {
		return c.Rates[tenors[0]]
	}
	if months > tenors[len(tenors)-1] {
		return c.Rates[tenors[len(tenors)-1]]
	}

	for i := 0; i < len(tenors)-1; i++ {
		if months > tenors[i] && months < tenors[i+1] {
			return (c.Rates[tenors[i]] + c.Rates[tenors[i+1]]) / 2
		}
	}
	return c.Rates[tenors[0]]
}

// lazy, in-memory cache for API requests
var cache = map[string][]byte{}

func getBytes(date time.Time) ([]byte, error) {
	tStr := date.Format(time.DateOnly)

	if out, ok := cache[tStr]; ok {
		return out, nil
	}

	url := fmt.Sprintf("https://www.ustreasuryyieldcurve.com/api/v1/yield_curve_snapshot?date=%s&offset=0", tStr)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	response, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("received status code %d and failed to read body: %w", response.StatusCode, err)
	}
	if response.StatusCode != 200 {
		return nil, fmt.Errorf("failed with status code %d: %s", response.StatusCode, string(responseBytes))
	}

	cache[tStr] = responseBytes

	return responseBytes, nil
}

func tenorMonthsFromField(in string) (int, error) {
	cleaned := strings.Replace(in, "yield_", "", 1)
	unit := cleaned[len(cleaned)-1]
	months, err := strconv.Atoi(cleaned[:len(cleaned)-1])
	if err != nil {
		return 0, err
	}
	if unit == 'y' {
		months *= 12
	}
	return months, nil
}

var yieldFields = []string{
	"yield_1m",
	"yield_2m",
	"yield_3m",
	"yield_4m",
	"yield_6m",
	"yield_1y",
	"yield_2y",
	"yield_3y",
	"yield_5y",
	"yield_7y",
	"yield_10y",
	"yield_20y",
	"yield_30y",
}

// GetYieldCurve fetches the yield curve snapshot for the given date.
// Dates with no published curve (weekends, holidays) walk backwards a
// month at a time until one is found.
func GetYieldCurve(date time.Time) (*YieldCurve, error) {
	responseBytes, err := getBytes(date)
	if err != nil {
		return nil, err
	}

	responseBody := []map[string]interface{}{}
	if err := json.Unmarshal(responseBytes, &responseBody); err != nil {
		return nil, err
	}

	rates := map[int]float64{}
	oneNonNil := false
	for _, row := range responseBody {
		for field, value := range row {
			for _, known := range yieldFields {
				if field != known {
					continue
				}
				months, err := tenorMonthsFromField(field)
				if err != nil {
					return nil, err
				}
				if value != nil {
					oneNonNil = true
					rates[months] = value.(float64) / 100
				}
			}
		}
	}
	if !oneNonNil {
		return GetYieldCurve(date.AddDate(0, -1, 0))
	}

	return &YieldCurve{Rates: rates}, nil
}

// RiskFreeRate is the 3-month bill rate on the given date, the usual
// choice for sharpe and sortino baselines.
func RiskFreeRate(date time.Time) (float64, error) {
	curve, err := GetYieldCurve(date)
	if err != nil {
		return 0, err
	}
	return curve.RateForTenor(3), nil
}
