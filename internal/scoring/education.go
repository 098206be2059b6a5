package scoring

// ScoreEducation computes the score for one education record.
//
// An irrelevant education (online course, bootcamp, certificate) scores 0
// no matter what else is set. Otherwise a tier school is worth 1, doubled
// for a PhD or Masters degree. Educations cannot score negative.
func ScoreEducation(e EducationInput) int {
	if e.IsIrrelevant {
		return 0
	}

	score := 0
	if e.IsTierSchool {
		score++
	}
	if e.IsPhD || e.IsMasters {
		score *= 2
	}

	return score
}
