package histogram

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Summary describes the distribution of one channel in bin units (0..127).
type Summary struct {
	Channel string  `json:"channel" example:"luma" doc:"Channel name"`
	Count   uint32  `json:"count" example:"10464" doc:"Samples in this channel"`
	Peak    uint32  `json:"peak" example:"812" doc:"Largest bin count"`
	Mean    float64 `json:"mean" example:"61.4" doc:"Weighted mean bin"`
	StdDev  float64 `json:"stddev" example:"18.2" doc:"Weighted standard deviation in bins"`
	Median  float64 `json:"median" example:"60" doc:"Median bin"`
	P99     float64 `json:"p99" example:"118" doc:"99th percentile bin"`
}

var binIndex = func() []float64 {
	x := make([]float64, Bins)
	for i := range x {
		x[i] = float64(i)
	}
	return x
}()

// Summarize computes distribution statistics for channel c. Empty channels
// yield a zero summary.
func (h *Histogram) Summarize(c Channel) Summary {
	s := Summary{
		Channel: c.String(),
		Count:   h.Sum(c),
		Peak:    h.Peak(c),
	}
	if s.Count == 0 {
		return s
	}

	weights := make([]float64, Bins)
	for i, n := range h.Bins(c) {
		weights[i] = float64(n)
	}

	s.Mean = stat.Mean(binIndex, weights)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(binIndex, weights)
		if math.IsNaN(s.StdDev) {
			s.StdDev = 0
		}
	}
	s.Median = stat.Quantile(0.5, stat.Empirical, binIndex, weights)
	s.P99 = stat.Quantile(0.99, stat.Empirical, binIndex, weights)
	return s
}

// SummarizeAll returns summaries for every channel in storage order.
func (h *Histogram) SummarizeAll() []Summary {
	out := make([]Summary, 0, len(Channels))
	for _, c := range Channels {
		out = append(out, h.Summarize(c))
	}
	return out
}
