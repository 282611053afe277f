package normalizer

import "github.com/desertthunder/wicket/internal/models"

// synthesizeProgress interpolates cumulative scores at each checkpoint over.
//
// Overs are converted to balls first so that 14.3 counts as 14.5 overs.
func synthesizeProgress(innings []models.Innings) models.MatchProgress {
	progress := models.MatchProgress{Checkpoints: []models.Checkpoint{}}
	if len(innings) != 2 {
		return progress
	}

	first, second := innings[0], innings[1]
	maxBalls := max(first.Overs.Balls(), second.Overs.Balls())

	for over := checkpointStep; over <= checkpointMax; over += checkpointStep {
		if over*6 > maxBalls {
			break
		}

		cp := models.Checkpoint{Over: over, Team1Runs: cumulative(first, over)}
		if over*6 <= second.Overs.Balls() {
			runs := cumulative(second, over)
			cp.Team2Runs = &runs
		}
		progress.Checkpoints = append(progress.Checkpoints, cp)
	}

	progress.Interpolated = true
	return progress
}

// cumulative is the side's runs scaled by the share of its innings completed at over.
func cumulative(in models.Innings, over int) int {
	balls := in.Overs.Balls()
	switch {
	case balls == 0:
		return 0
	case over*6 >= balls:
		return in.Runs
	default:
		return in.Runs * over * 6 / balls
	}
}
