package analytics

import "caregame/internal/models"

// Emotion Detector risk levels. Front ends match on these strings.
const (
	EmotionRiskHigh     = "High risk. Recommend further clinical evaluation for ASD."
	EmotionRiskModerate = "Moderate concern. Consider observing other social behaviors."
	EmotionRiskLow      = "Low risk. Mimicry behavior is within expected range."
)

const (
	expectedMimicRT  = 1.5 // seconds
	inaccuracyWeight = 1.0
	delayWeight      = 2.0
)

// EmotionResult is the Emotion Detector mimicry score
type EmotionResult struct {
	TotalTrials     int      `json:"totalTrials"`
	CorrectCount    int      `json:"correctCount"`
	AccuracyPercent float64  `json:"accuracyPercent"`
	AvgResponseTime *float64 `json:"avgResponseTime"`
	Inaccuracy      int      `json:"inaccuracy"`
	Delay           float64  `json:"delay"`
	RiskScore       float64  `json:"riskScore"`
	RiskLevel       string   `json:"riskLevel"`
}

// ComputeEmotionScore scores a list of Emotion Detector trials. The mean
// response time only uses correct trials with a positive time.
func ComputeEmotionScore(trials []models.TrialEvent) EmotionResult {
	res := EmotionResult{TotalTrials: len(trials)}

	var rtSum float64
	var rtCount int
	for _, t := range trials {
		if !t.IsCorrect {
			continue
		}
		res.CorrectCount++
		if t.ResponseTime > 0 {
			rtSum += t.ResponseTime
			rtCount++
		}
	}

	if res.TotalTrials > 0 {
		res.AccuracyPercent = float64(res.CorrectCount) / float64(res.TotalTrials) * 100
	}
	if rtCount > 0 {
		avg := rtSum / float64(rtCount)
		res.AvgResponseTime = &avg
		if avg > expectedMimicRT {
			res.Delay = avg - expectedMimicRT
		}
	}

	res.Inaccuracy = res.TotalTrials - res.CorrectCount
	res.RiskScore = inaccuracyWeight*float64(res.Inaccuracy) + delayWeight*res.Delay

	switch {
	case res.RiskScore > 3:
		res.RiskLevel = EmotionRiskHigh
	case res.RiskScore > 1:
		res.RiskLevel = EmotionRiskModerate
	default:
		res.RiskLevel = EmotionRiskLow
	}

	return res
}
