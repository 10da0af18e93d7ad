package analytics

import "caregame/internal/models"

// Emotion Adventure feedback labels. Front ends match on these strings.
const (
	AnxietyHigh      = "High anxiety"
	AnxietyMild      = "Mildly anxious"
	AnxietyConfident = "Confident"
)

const (
	maxChoiceScore = 2.0 // per-choice scale is 0..2
	rtCap          = 5.0 // seconds
	choiceWeight   = 0.7
)

// AnxietyResult is the Emotion Adventure anxiety score
type AnxietyResult struct {
	ChoiceIndex  float64 `json:"choiceIndex"`
	RTIndex      float64 `json:"rtIndex"`
	AnxietyScore float64 `json:"anxietyScore"`
	Feedback     string  `json:"feedback"`
	AvgRT        float64 `json:"avgRT"`
}

// ComputeAnxietyScore weighs the normalized choice total against the capped
// mean reaction time. Empty inputs are treated as a single zero.
func ComputeAnxietyScore(scores, rts []float64) AnxietyResult {
	if len(scores) == 0 {
		scores = []float64{0}
	}
	if len(rts) == 0 {
		rts = []float64{0}
	}

	var total float64
	for _, s := range scores {
		total += s
	}
	choiceIndex := total / (maxChoiceScore * float64(len(scores)))

	var rtSum float64
	for _, rt := range rts {
		rtSum += rt
	}
	avgRT := rtSum / float64(len(rts))
	rtIndex := min(avgRT, rtCap) / rtCap

	score := choiceWeight*choiceIndex + (1-choiceWeight)*rtIndex

	feedback := AnxietyConfident
	switch {
	case score > 0.6:
		feedback = AnxietyHigh
	case score > 0.25:
		feedback = AnxietyMild
	}

	return AnxietyResult{
		ChoiceIndex:  choiceIndex,
		RTIndex:      rtIndex,
		AnxietyScore: score,
		Feedback:     feedback,
		AvgRT:        avgRT,
	}
}

// ChoiceArrays splits Emotion Adventure choices into parallel score and RT slices
func ChoiceArrays(choices []models.Choice) ([]float64, []float64) {
	scores := make([]float64, 0, len(choices))
	rts := make([]float64, 0, len(choices))
	for _, c := range choices {
		scores = append(scores, c.Score)
		rts = append(rts, c.RT)
	}
	return scores, rts
}
