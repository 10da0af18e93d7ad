package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"caregame/internal/analytics"
	"caregame/internal/models"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func sampleSessions() []models.SessionRecord {
	return []models.SessionRecord{
		{
			Game: "Color Spotter", Timestamp: "2026-10-05T10:00:00Z", Score: floatPtr(3),
			UserAnswers:    []string{"red", "blue", "green"},
			CorrectAnswers: []string{"red", "green", "blue"},
		},
		{
			Game: "EmotionMatch", Timestamp: "2026-10-04T10:00:00Z", Score: floatPtr(1), RiskScore: floatPtr(1.0),
			Trials: []models.TrialEvent{{IsCorrect: true, ResponseTime: 1.0}, {IsCorrect: false, ResponseTime: 0}},
		},
		{Game: "Emotion Detector", Timestamp: "2026-10-03T10:00:00Z", Score: floatPtr(2), RiskScore: floatPtr(4.0)},
		{Game: "Animal Hide & Seek", Timestamp: "2026-10-02T10:00:00Z", Hits: intPtr(6), Status: "Game Over"},
		{Game: "Letter Sound", Timestamp: "2026-10-01T10:00:00Z", Score: floatPtr(9), Total: intPtr(10), TotalTime: floatPtr(5),
			Accuracy: floatPtr(0.9), AvgTime: floatPtr(0.5)},
	}
}

func sampleSet() SessionSet {
	return SessionSet{ChildID: "maya", Sessions: MergeSessions("maya", nil, sampleSessions(), LocalFirst)}
}

func TestBuildReportTotalsAndCards(t *testing.T) {
	report := BuildReport("maya", nil, sampleSet(), analytics.DefaultNorms)

	if report.TotalPlays != 5 {
		t.Errorf("TotalPlays = %d, want 5", report.TotalPlays)
	}
	if report.AverageScore != "4.2" {
		t.Errorf("AverageScore = %q, want 4.2", report.AverageScore)
	}
	if report.Child.Age != nil {
		t.Error("age should be unavailable without a profile")
	}

	if len(report.Games) != 3 {
		t.Fatalf("expected 3 game cards, got %d: %+v", len(report.Games), report.Games)
	}
	color, emotion, letter := report.Games[0], report.Games[1], report.Games[2]
	if color.Game != models.GameColorSpotter || color.Attempts != 1 || color.BestScore != 3 || color.LatestRisk != nil {
		t.Errorf("unexpected color card %+v", color)
	}
	if emotion.Game != models.GameEmotionDetector || emotion.Attempts != 2 || emotion.BestScore != 2 {
		t.Errorf("unexpected emotion card %+v", emotion)
	}
	if emotion.LatestRisk == nil || *emotion.LatestRisk != 1.0 {
		t.Errorf("LatestRisk should come from the newest emotion session, got %v", emotion.LatestRisk)
	}
	if letter.Game != models.GameLetterSound || letter.BestScore != 9 {
		t.Errorf("unexpected letter sound card %+v", letter)
	}
}

func TestBuildReportSessionRows(t *testing.T) {
	report := BuildReport("maya", nil, sampleSet(), analytics.DefaultNorms)

	if len(report.Sessions) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(report.Sessions))
	}

	first := report.Sessions[0]
	if first.ColorBlind == nil || !*first.ColorBlind {
		t.Errorf("color session should be flagged, got %v", first.ColorBlind)
	}
	if first.Status != models.DefaultStatus {
		t.Errorf("Status = %q, want default", first.Status)
	}

	emotion := report.Sessions[1].Emotion
	if emotion == nil {
		t.Fatal("expected per-session emotion metrics")
	}
	if emotion.TotalTrials != 2 || emotion.CorrectCount != 1 || emotion.AccuracyPercent != 50 || !approx(emotion.RiskScore, 1.0) {
		t.Errorf("unexpected emotion metrics %+v", emotion)
	}
	if report.Sessions[2].Emotion != nil {
		t.Error("emotion session without trials should have no metrics")
	}

	unknown := report.Sessions[3]
	if unknown.Kind != models.GameUnknown || unknown.Score == nil || *unknown.Score != 6 || unknown.Status != "Game Over" {
		t.Errorf("unexpected unknown game row %+v", unknown)
	}

	letter := report.Sessions[4]
	if letter.LetterSound == nil || !approx(letter.LetterSound.Score, 0.65) || letter.LetterSound.FlagDyslexia {
		t.Errorf("unexpected letter sound row %+v", letter.LetterSound)
	}
	if letter.Accuracy == nil || *letter.Accuracy != 0.9 {
		t.Errorf("stored accuracy should be surfaced, got %v", letter.Accuracy)
	}
}

func TestBuildReportHistory(t *testing.T) {
	report := BuildReport("maya", nil, sampleSet(), analytics.DefaultNorms)
	h := report.History

	if h.Emotion == nil || h.Emotion.RiskLevel != analytics.EmotionRiskLow {
		t.Errorf("unexpected emotion summary %+v", h.Emotion)
	}
	if h.LetterSound == nil || !approx(h.LetterSound.Accuracy, 0.9) {
		t.Errorf("unexpected letter sound summary %+v", h.LetterSound)
	}
	if h.ColorVision == nil || h.ColorVision.Screened != 1 || h.ColorVision.Flagged != 1 || !h.ColorVision.LatestFlag {
		t.Errorf("unexpected color vision summary %+v", h.ColorVision)
	}
	if h.ADHD != nil {
		t.Error("ADHD summary should be unavailable without an age")
	}
	if h.Anxiety != nil {
		t.Error("anxiety summary should be unavailable without Emotion Adventure sessions")
	}
}

func symbolSession() models.SessionRecord {
	return models.SessionRecord{
		Game: "Symbol Spotter", Timestamp: "2026-10-01T10:00:00Z",
		Hits: intPtr(8), Misses: intPtr(2), FalseAlarms: intPtr(1), TotalTargets: intPtr(10),
		Trials: []models.TrialEvent{
			{IsCorrect: true, ResponseTime: 0.6},
			{IsCorrect: true, ResponseTime: 0.7},
			{IsCorrect: true, ResponseTime: 0.65},
		},
	}
}

func TestBuildReportADHDSummary(t *testing.T) {
	tests := []struct {
		name  string
		other []models.SessionRecord
	}{
		{"symbol spotter only", nil},
		{"other games ignored", []models.SessionRecord{
			{Game: "Emotion Detector", Timestamp: "2026-10-02T10:00:00Z", Hits: intPtr(3),
				Trials: []models.TrialEvent{{IsCorrect: true, ResponseTime: 3.0}, {IsCorrect: false, ResponseTime: 0.4}}},
			{Game: "Letter Sound", Timestamp: "2026-10-03T10:00:00Z", Score: floatPtr(9), Total: intPtr(10), TotalTime: floatPtr(5),
				Trials: []models.TrialEvent{{IsCorrect: true, ResponseTime: 2.5}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := append([]models.SessionRecord{symbolSession()}, tt.other...)
			set := SessionSet{Sessions: MergeSessions("maya", nil, remote, LocalFirst)}
			profile := &models.ChildProfile{Name: "maya", Age: 4}

			report := BuildReport("maya", profile, set, analytics.DefaultNorms)

			adhd := report.History.ADHD
			if adhd == nil {
				t.Fatal("expected an ADHD summary")
			}
			if adhd.Hits != 8 || adhd.FalseAlarms != 1 || adhd.TotalTargets != 10 {
				t.Errorf("counters = %d/%d/%d, want 8/1/10", adhd.Hits, adhd.FalseAlarms, adhd.TotalTargets)
			}
			if !approx(adhd.Omission, 0.2) || !approx(adhd.Commission, 1.0/9) {
				t.Errorf("rates = %v, %v", adhd.Omission, adhd.Commission)
			}
			if !approx(adhd.MeanRT, 0.65) || !approx(adhd.SdRT, 0.05) {
				t.Errorf("RT stats = %v, %v, want 0.65, 0.05", adhd.MeanRT, adhd.SdRT)
			}
			if !approx(adhd.ZOmission, 1.6) {
				t.Errorf("ZOmission = %v, want 1.6", adhd.ZOmission)
			}
			if adhd.Flags != 1 || adhd.IsAtRisk || adhd.Verdict != ADHDVerdictNone {
				t.Errorf("unexpected verdict %+v", adhd)
			}
			last := report.Sessions[len(report.Sessions)-1]
			if last.Kind != models.GameSymbolSpotter || last.ADHD == nil {
				t.Error("Symbol Spotter row should carry ADHD metrics")
			}
		})
	}
}

func TestBuildReportADHDSummaryWithoutSymbolSpotter(t *testing.T) {
	profile := &models.ChildProfile{Name: "maya", Age: 4}

	report := BuildReport("maya", profile, sampleSet(), analytics.DefaultNorms)

	if report.History.ADHD != nil {
		t.Errorf("ADHD summary should be unavailable without Symbol Spotter sessions, got %+v", report.History.ADHD)
	}
}

func TestBuildReportAnxietySummary(t *testing.T) {
	set := SessionSet{Sessions: MergeSessions("maya", nil, []models.SessionRecord{
		{Game: "Emotion Adventure", Timestamp: "2026-10-02T10:00:00Z", Score: floatPtr(6),
			Choices: []models.Choice{{Score: 2, RT: 5}, {Score: 2, RT: 5}}},
		{Game: "Emotion Adventure", Timestamp: "2026-10-01T10:00:00Z", Score: floatPtr(2),
			Choices: []models.Choice{{Score: 2, RT: 5}}},
	}, LocalFirst)}

	report := BuildReport("maya", nil, set, analytics.DefaultNorms)

	if report.History.Anxiety == nil || report.History.Anxiety.Feedback != analytics.AnxietyHigh {
		t.Errorf("unexpected anxiety summary %+v", report.History.Anxiety)
	}
	if report.Sessions[1].Anxiety == nil || !approx(report.Sessions[1].Anxiety.AnxietyScore, 1.0) {
		t.Errorf("unexpected anxiety row %+v", report.Sessions[1].Anxiety)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	profile := &models.ChildProfile{Name: "maya", Age: 4, CreatedAt: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	report := BuildReport("maya", profile, SessionSet{Sessions: []models.SessionRecord{}}, analytics.DefaultNorms)

	if report.AverageScore != NoScore {
		t.Errorf("AverageScore = %q, want %q", report.AverageScore, NoScore)
	}
	if report.History.ADHD != nil || report.History.LetterSound != nil {
		t.Error("no sessions means no history metrics")
	}

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte(`"games":[]`)) || !bytes.Contains(data, []byte(`"sessions":[]`)) {
		t.Errorf("empty lists should encode as [], got %s", data)
	}
	if !bytes.Contains(data, []byte(`"age":4`)) {
		t.Errorf("age missing from %s", data)
	}
}

func TestBuildReportIsIdempotent(t *testing.T) {
	set := sampleSet()
	profile := &models.ChildProfile{Name: "maya", Age: 7}

	first, err := json.Marshal(BuildReport("maya", profile, set, analytics.DefaultNorms))
	if err != nil {
		t.Fatal(err)
	}
	second, err := json.Marshal(BuildReport("maya", profile, set, analytics.DefaultNorms))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("building the same report twice should give identical bytes")
	}
}

func TestReportServiceBuild(t *testing.T) {
	ctx := context.Background()
	remote := newFakeRemoteStore()
	remote.records["maya"] = append(sampleSessions(), symbolSession())
	profiles := &fakeProfileStore{profiles: map[string]models.ChildProfile{
		"maya": {Name: "maya", Age: 5},
		"leo":  {Name: "leo", Age: 8},
	}}
	svc := NewReportService(NewReconcileService(nil, remote, LocalFirst), profiles, nil)

	report, err := svc.Build(ctx, "Maya")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if report.TotalPlays != 6 || report.Child.Age == nil || *report.Child.Age != 5 {
		t.Errorf("unexpected report header %+v, plays %d", report.Child, report.TotalPlays)
	}
	if report.History.ADHD == nil {
		t.Error("ADHD summary expected with a known age")
	}

	empty, err := svc.Build(ctx, "leo")
	if err != nil {
		t.Fatalf("Build() for profile without sessions error = %v", err)
	}
	if empty.TotalPlays != 0 {
		t.Errorf("TotalPlays = %d, want 0", empty.TotalPlays)
	}

	if _, err := svc.Build(ctx, "nobody"); !errors.Is(err, ErrChildNotFound) {
		t.Errorf("expected ErrChildNotFound, got %v", err)
	}
}

func TestReportServiceProfileFailureDegrades(t *testing.T) {
	remote := newFakeRemoteStore()
	remote.records["maya"] = sampleSessions()
	svc := NewReportService(NewReconcileService(nil, remote, LocalFirst), &fakeProfileStore{err: errStoreDown}, nil)

	report, err := svc.Build(context.Background(), "maya")
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if report.Child.Age != nil || report.History.ADHD != nil {
		t.Error("age-dependent sections should be unavailable")
	}
}
