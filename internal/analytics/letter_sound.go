package analytics

import "caregame/internal/models"

// dyslexiaCutoff is the composite score below which a child is flagged
const dyslexiaCutoff = 0.1

// LetterSoundResult aggregates Letter Sound sessions into a dyslexia screen
type LetterSoundResult struct {
	TotalTrials  int     `json:"totalTrials"`
	TotalCorrect float64 `json:"totalCorrect"`
	TotalTime    float64 `json:"totalTime"`
	Accuracy     float64 `json:"accuracy"`
	AvgTime      float64 `json:"avgTime"`
	Score        float64 `json:"score"`
	FlagDyslexia bool    `json:"flagDyslexia"`
}

// ComputeLetterSoundStats sums trials, correct answers and time over the
// sessions. It returns nil for an empty list so that "no data" is never
// shown as "at risk".
func ComputeLetterSoundStats(sessions []models.SessionRecord) *LetterSoundResult {
	if len(sessions) == 0 {
		return nil
	}

	res := &LetterSoundResult{}
	for _, s := range sessions {
		res.TotalTrials += sessionTrialCount(s)
		res.TotalCorrect += models.FloatValue(s.Score)
		res.TotalTime += sessionTotalTime(s)
	}

	if res.TotalTrials > 0 {
		res.Accuracy = res.TotalCorrect / float64(res.TotalTrials)
		res.AvgTime = res.TotalTime / float64(res.TotalTrials)
	}
	res.Score = res.Accuracy - 0.5*res.AvgTime
	res.FlagDyslexia = res.Score < dyslexiaCutoff

	return res
}

// sessionTrialCount prefers the stored total, then the number of trials.
// A stored total of zero falls through to the trials.
func sessionTrialCount(s models.SessionRecord) int {
	if n := models.IntValue(s.Total); n != 0 {
		return n
	}
	return len(s.Trials)
}

// sessionTotalTime prefers the stored total time, then the sum of trial times
func sessionTotalTime(s models.SessionRecord) float64 {
	if t := models.FloatValue(s.TotalTime); t != 0 {
		return t
	}
	var sum float64
	for _, t := range s.Trials {
		sum += t.ResponseTime
	}
	return sum
}
