package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"caregame/internal/analytics"
	"caregame/internal/models"
)

// ErrChildNotFound is returned when a child has neither a profile nor sessions
var ErrChildNotFound = errors.New("child not found")

// ADHD summary verdicts shown under the composite score
const (
	ADHDVerdictElevated = "Elevated ADHD risk detected; consult a specialist."
	ADHDVerdictNone     = "No elevated risk detected."
)

// NoScore is the average score shown when a child has no sessions
const NoScore = "—"

// Report is the caregiver-facing summary for one child. It is recomputed on
// every request and never stored.
type Report struct {
	Child             ChildSummary   `json:"child"`
	TotalPlays        int            `json:"totalPlays"`
	AverageScore      string         `json:"avgScore"`
	Games             []GameCard     `json:"games"`
	Sessions          []SessionRow   `json:"sessions"`
	History           HistorySummary `json:"history"`
	LocalUnavailable  bool           `json:"localUnavailable,omitempty"`
	RemoteUnavailable bool           `json:"remoteUnavailable,omitempty"`
}

// ChildSummary is the profile header. Age and CreatedAt are nil without a profile.
type ChildSummary struct {
	Name      string     `json:"name"`
	Age       *int       `json:"age"`
	CreatedAt *time.Time `json:"createdAt"`
}

// GameCard summarizes the attempts at one game
type GameCard struct {
	Game       models.GameKind `json:"game"`
	Display    string          `json:"display"`
	Attempts   int             `json:"attempts"`
	BestScore  float64         `json:"bestScore"`
	LatestRisk *float64        `json:"latestRisk"`
}

// SessionRow is one line of the session history table
type SessionRow struct {
	ID           string          `json:"id,omitempty"`
	Date         string          `json:"date"`
	Game         string          `json:"game"`
	Kind         models.GameKind `json:"kind,omitempty"`
	Score        *float64        `json:"score"`
	Accuracy     *float64        `json:"accuracy"`
	AvgTime      *float64        `json:"avgTime"`
	FlagDyslexia bool            `json:"flagDyslexia"`
	RiskScore    *float64        `json:"riskScore"`
	Status       string          `json:"status"`

	ColorBlind  *bool                        `json:"colorBlind,omitempty"`
	Emotion     *analytics.EmotionResult     `json:"emotion,omitempty"`
	LetterSound *analytics.LetterSoundResult `json:"letterSound,omitempty"`
	ADHD        *analytics.ADHDResult        `json:"adhd,omitempty"`
	Anxiety     *analytics.AnxietyResult     `json:"anxiety,omitempty"`
}

// HistorySummary holds the metrics computed over a child's whole history.
// A nil section means the data needed for it is unavailable.
type HistorySummary struct {
	Emotion     *analytics.EmotionResult     `json:"emotion"`
	LetterSound *analytics.LetterSoundResult `json:"letterSound"`
	ADHD        *ADHDSummary                 `json:"adhd"`
	Anxiety     *analytics.AnxietyResult     `json:"anxiety"`
	ColorVision *ColorVisionSummary          `json:"colorVision"`
}

// ADHDSummary is the Symbol Spotter composite with its verdict line
type ADHDSummary struct {
	analytics.ADHDResult
	Verdict string `json:"verdict"`
}

// ColorVisionSummary counts Color Spotter sessions that carried answer arrays
type ColorVisionSummary struct {
	Screened   int  `json:"screened"`
	Flagged    int  `json:"flagged"`
	LatestFlag bool `json:"latestFlag"`
}

// ReportService builds caregiver reports
type ReportService struct {
	reconcile *ReconcileService
	profiles  ProfileStore
	norms     analytics.NormTable
}

// NewReportService creates a report service. A nil norm table uses the built-in bands.
func NewReportService(reconcile *ReconcileService, profiles ProfileStore, norms analytics.NormTable) *ReportService {
	if norms == nil {
		norms = analytics.DefaultNorms
	}
	return &ReportService{
		reconcile: reconcile,
		profiles:  profiles,
		norms:     norms,
	}
}

// Build reconciles a child's sessions and aggregates them into a report.
// A profile lookup failure is logged and the report is built without an age.
func (s *ReportService) Build(ctx context.Context, childID string) (*Report, error) {
	childID = models.NormalizeChildID(childID)
	if childID == "" {
		return nil, ErrChildNotFound
	}

	var profile *models.ChildProfile
	if s.profiles != nil {
		p, err := s.profiles.Get(ctx, childID)
		if err != nil {
			log.Printf("Failed to load profile for %s: %v", childID, err)
		} else {
			profile = p
		}
	}

	set := s.reconcile.Sessions(ctx, childID)
	if profile == nil && len(set.Sessions) == 0 && !set.RemoteUnavailable {
		return nil, fmt.Errorf("%w: %s", ErrChildNotFound, childID)
	}

	return BuildReport(childID, profile, set, s.norms), nil
}

// BuildReport aggregates an already reconciled session set. It is a pure
// function of its inputs.
func BuildReport(childID string, profile *models.ChildProfile, set SessionSet, norms analytics.NormTable) *Report {
	sessions := set.Sessions
	age := 0
	child := ChildSummary{Name: models.NormalizeChildID(childID)}
	if profile != nil {
		age = profile.Age
		a := profile.Age
		createdAt := profile.CreatedAt
		child.Age = &a
		if !createdAt.IsZero() {
			child.CreatedAt = &createdAt
		}
	}

	report := &Report{
		Child:             child,
		TotalPlays:        len(sessions),
		AverageScore:      averageScore(sessions),
		Games:             gameCards(sessions),
		Sessions:          make([]SessionRow, 0, len(sessions)),
		LocalUnavailable:  set.LocalUnavailable,
		RemoteUnavailable: set.RemoteUnavailable,
	}
	for _, rec := range sessions {
		report.Sessions = append(report.Sessions, sessionRow(rec, age, norms))
	}
	report.History = historySummary(sessions, age, norms)

	return report
}

func averageScore(sessions []models.SessionRecord) string {
	if len(sessions) == 0 {
		return NoScore
	}
	var sum float64
	for _, rec := range sessions {
		sum += rec.Points
	}
	return fmt.Sprintf("%.1f", sum/float64(len(sessions)))
}

// gameCards builds one card per known game with at least one attempt, in
// catalogue order. Sessions are newest first so the first match is the latest.
func gameCards(sessions []models.SessionRecord) []GameCard {
	cards := []GameCard{}
	for _, def := range models.GameDefs {
		card := GameCard{Game: def.Kind, Display: def.Display}
		for _, rec := range sessions {
			if rec.Kind != def.Kind {
				continue
			}
			if card.Attempts == 0 {
				card.BestScore = rec.Points
				if rec.RiskScore != nil {
					risk := *rec.RiskScore
					card.LatestRisk = &risk
				}
			} else if rec.Points > card.BestScore {
				card.BestScore = rec.Points
			}
			card.Attempts++
		}
		if card.Attempts > 0 {
			cards = append(cards, card)
		}
	}
	return cards
}

func sessionRow(rec models.SessionRecord, age int, norms analytics.NormTable) SessionRow {
	row := SessionRow{
		ID:           rec.ID,
		Date:         rec.Timestamp,
		Game:         rec.Game,
		Kind:         rec.Kind,
		Accuracy:     rec.Accuracy,
		AvgTime:      rec.AvgTime,
		FlagDyslexia: rec.FlagDyslexia,
		RiskScore:    rec.RiskScore,
		Status:       rec.StatusOrDefault(),
	}
	if rec.HasPoints() {
		points := rec.Points
		row.Score = &points
	}

	switch rec.Kind {
	case models.GameColorSpotter:
		if hasAnswers(rec) {
			flag := analytics.IsColorBlind(rec.UserAnswers, rec.CorrectAnswers)
			row.ColorBlind = &flag
		}
	case models.GameEmotionDetector:
		if len(rec.Trials) > 0 {
			res := analytics.ComputeEmotionScore(rec.Trials)
			row.Emotion = &res
		}
	case models.GameLetterSound:
		row.LetterSound = analytics.ComputeLetterSoundStats([]models.SessionRecord{rec})
	case models.GameSymbolSpotter:
		res, err := analytics.ComputeADHDMetrics([]models.SessionRecord{rec}, age, norms)
		if err != nil {
			log.Printf("ADHD metrics unavailable for session %s: %v", rec.Fingerprint(), err)
		} else {
			row.ADHD = res
		}
	case models.GameEmotionAdventure:
		res := analytics.ComputeAnxietyScore(analytics.ChoiceArrays(rec.Choices))
		row.Anxiety = &res
	}

	return row
}

func historySummary(sessions []models.SessionRecord, age int, norms analytics.NormTable) HistorySummary {
	var summary HistorySummary

	var emotionTrials []models.TrialEvent
	var letterSound []models.SessionRecord
	var choices []models.Choice
	var symbol []models.SessionRecord
	adventures := 0
	var colour ColorVisionSummary

	for _, rec := range sessions {
		switch rec.Kind {
		case models.GameEmotionDetector:
			emotionTrials = append(emotionTrials, rec.Trials...)
		case models.GameLetterSound:
			letterSound = append(letterSound, rec)
		case models.GameSymbolSpotter:
			symbol = append(symbol, rec)
		case models.GameEmotionAdventure:
			adventures++
			choices = append(choices, rec.Choices...)
		case models.GameColorSpotter:
			if !hasAnswers(rec) {
				continue
			}
			flagged := analytics.IsColorBlind(rec.UserAnswers, rec.CorrectAnswers)
			if colour.Screened == 0 {
				colour.LatestFlag = flagged
			}
			colour.Screened++
			if flagged {
				colour.Flagged++
			}
		}
	}

	if len(emotionTrials) > 0 {
		res := analytics.ComputeEmotionScore(emotionTrials)
		summary.Emotion = &res
	}
	summary.LetterSound = analytics.ComputeLetterSoundStats(letterSound)
	if adventures > 0 {
		res := analytics.ComputeAnxietyScore(analytics.ChoiceArrays(choices))
		summary.Anxiety = &res
	}
	if colour.Screened > 0 {
		summary.ColorVision = &colour
	}

	if len(symbol) == 0 {
		return summary
	}

	adhd, err := analytics.ComputeADHDMetrics(symbol, age, norms)
	if err != nil {
		log.Printf("ADHD summary unavailable: %v", err)
	} else if adhd != nil {
		verdict := ADHDVerdictNone
		if adhd.IsAtRisk {
			verdict = ADHDVerdictElevated
		}
		summary.ADHD = &ADHDSummary{ADHDResult: *adhd, Verdict: verdict}
	}

	return summary
}

func hasAnswers(rec models.SessionRecord) bool {
	return len(rec.UserAnswers) > 0 || len(rec.CorrectAnswers) > 0
}
