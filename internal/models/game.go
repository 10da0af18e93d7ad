package models

import "strings"

// GameKind identifies one of the screening mini-games
type GameKind string

const (
	GameUnknown          GameKind = ""
	GameColorSpotter     GameKind = "color"
	GameEmotionDetector  GameKind = "emotion"
	GameLetterSound      GameKind = "letterSound"
	GameSymbolSpotter    GameKind = "symbol"
	GameEmotionAdventure GameKind = "emotionAdventure"
)

// GameDef describes a game as it is shown on the caregiver report
type GameDef struct {
	Kind     GameKind
	Display  string
	Variants []string
}

// GameDefs lists the games in report order. Variants holds every name a
// game client has ever written into a session record.
var GameDefs = []GameDef{
	{Kind: GameColorSpotter, Display: "Color Spotter", Variants: []string{"Color Spotter"}},
	{Kind: GameEmotionDetector, Display: "Emotion Detector", Variants: []string{"Emotion Detector", "EmotionMatch"}},
	{Kind: GameLetterSound, Display: "Letter Sound", Variants: []string{"Letter Sound", "LetterSound"}},
	{Kind: GameSymbolSpotter, Display: "Symbol Spotter", Variants: []string{"Symbol Spotter"}},
	{Kind: GameEmotionAdventure, Display: "Emotion Adventure", Variants: []string{"Emotion Adventure"}},
}

// ParseGameKind maps a stored game name, including legacy aliases, to its kind.
// Names that match no game return GameUnknown.
func ParseGameKind(name string) GameKind {
	name = strings.TrimSpace(name)
	for _, def := range GameDefs {
		if string(def.Kind) == name {
			return def.Kind
		}
		for _, v := range def.Variants {
			if v == name {
				return def.Kind
			}
		}
	}
	return GameUnknown
}

// Display returns the report name of the kind
func (k GameKind) Display() string {
	for _, def := range GameDefs {
		if def.Kind == k {
			return def.Display
		}
	}
	return ""
}

// IsKnown reports whether the kind is one of the five games
func (k GameKind) IsKnown() bool {
	return k.Display() != ""
}
