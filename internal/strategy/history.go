package strategy

// closeHistory keeps a bounded rolling window of close prices per
// symbol. Each push trims the series to the window so long runs don't
// grow strategy memory.
type closeHistory struct {
	window int
	closes map[string][]float64
}

func newCloseHistory(window int) *closeHistory {
	return &closeHistory{
		window: window,
		closes: map[string][]float64{},
	}
}

// push appends a close and returns the trimmed series for the symbol.
func (h *closeHistory) push(symbol string, close float64) []float64 {
	series := append(h.closes[symbol], close)
	if len(series) > h.window {
		series = series[len(series)-h.window:]
	}
	h.closes[symbol] = series
	return series
}

func (h *closeHistory) get(symbol string) []float64 {
	return h.closes[symbol]
}

func (h *closeHistory) reset() {
	h.closes = map[string][]float64{}
}

func sma(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range series {
		sum += v
	}
	return sum / float64(len(series))
}
