package analytics

import (
	"fmt"
	"math"

	"caregame/internal/models"
)

// adhdZThreshold is the z-score above which a measure counts as a flag
const adhdZThreshold = 1.5

// ADHDResult is the continuous performance test scoring for Symbol Spotter.
// Every intermediate value is kept for the report.
type ADHDResult struct {
	Hits           int     `json:"hits"`
	Misses         int     `json:"misses"`
	FalseAlarms    int     `json:"falseAlarms"`
	TotalTargets   int     `json:"totalTargets"`
	Omission       float64 `json:"omission"`
	Commission     float64 `json:"commission"`
	MeanRT         float64 `json:"meanRT"`
	SdRT           float64 `json:"sdRT"`
	ZOmission      float64 `json:"zOmission"`
	ZCommission    float64 `json:"zCommission"`
	ZSdRT          float64 `json:"zSdRT"`
	CompositeScore float64 `json:"compositeScore"`
	Flags          int     `json:"flags"`
	IsAtRisk       bool    `json:"isAtRisk"`
}

// ComputeADHDMetrics pools counters and positive response times over the
// sessions and scores them against the norm band for age. It returns
// nil, nil when age is unknown or outside every band, and ErrDegenerateNorm
// when the band cannot standardize a measure.
func ComputeADHDMetrics(sessions []models.SessionRecord, age int, norms NormTable) (*ADHDResult, error) {
	if age <= 0 {
		return nil, nil
	}

	res := &ADHDResult{}
	var samples []float64
	for _, s := range sessions {
		res.Hits += models.IntValue(s.Hits)
		res.Misses += models.IntValue(s.Misses)
		res.FalseAlarms += models.IntValue(s.FalseAlarms)
		res.TotalTargets += models.IntValue(s.TotalTargets)
		for _, t := range s.Trials {
			if t.ResponseTime > 0 {
				samples = append(samples, t.ResponseTime)
			}
		}
	}

	if res.TotalTargets > 0 {
		res.Omission = float64(res.Misses) / float64(res.TotalTargets)
	}
	if responses := res.Hits + res.FalseAlarms; responses > 0 {
		res.Commission = float64(res.FalseAlarms) / float64(responses)
	}
	res.MeanRT, res.SdRT = meanAndSampleSD(samples)

	band := norms.Lookup(age)
	if band == nil {
		return nil, nil
	}

	var err error
	if res.ZOmission, err = ZScore(res.Omission, band.Omission.Mean, band.Omission.Std); err != nil {
		return nil, fmt.Errorf("omission: %w", err)
	}
	if res.ZCommission, err = ZScore(res.Commission, band.Commission.Mean, band.Commission.Std); err != nil {
		return nil, fmt.Errorf("commission: %w", err)
	}
	if res.ZSdRT, err = ZScore(res.SdRT, band.RTSD.Mean, band.RTSD.Std); err != nil {
		return nil, fmt.Errorf("rt sd: %w", err)
	}

	res.CompositeScore = res.ZOmission + res.ZCommission + res.ZSdRT
	for _, z := range []float64{res.ZOmission, res.ZCommission, res.ZSdRT} {
		if z > adhdZThreshold {
			res.Flags++
		}
	}
	res.IsAtRisk = res.Flags >= 2

	return res, nil
}

// meanAndSampleSD returns the mean and the N-1 standard deviation. The mean
// of no samples is 0 and the deviation of fewer than two samples is 0.
func meanAndSampleSD(samples []float64) (float64, float64) {
	if len(samples) == 0 {
		return 0, 0
	}

	var sum float64
	for _, v := range samples {
		sum += v
	}
	mean := sum / float64(len(samples))

	if len(samples) < 2 {
		return mean, 0
	}

	var sq float64
	for _, v := range samples {
		sq += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(sq / float64(len(samples)-1))
}
