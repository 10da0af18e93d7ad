package analytics

// colorBlindThreshold is the number of wrong plates that flags a screen
const colorBlindThreshold = 2

// IsColorBlind counts index-wise mismatches between the child's answers and
// the correct answers. A missing answer counts as a mismatch.
func IsColorBlind(userAnswers, correctAnswers []string) bool {
	wrong := 0
	for i, correct := range correctAnswers {
		if i >= len(userAnswers) || userAnswers[i] != correct {
			wrong++
		}
	}
	return wrong >= colorBlindThreshold
}
