package teststrokes

import (
	"fmt"
	"log"
	"sort"
)

// verifyResults checks the consistency of rankings and leaderboard, and that
// scores order the generation tiers the way squareness should.
func verifyResults(config *Config, attempts []Attempt, rankings, leaderboard []Entry) error {
	log.Println("verifying results...")

	if len(rankings) == 0 {
		return fmt.Errorf("no rankings to verify")
	}

	sortedRankings := make([]Entry, len(rankings))
	copy(sortedRankings, rankings)
	sort.Slice(sortedRankings, func(i, j int) bool {
		return sortedRankings[i].Score > sortedRankings[j].Score
	})

	if len(leaderboard) > 0 {
		if err := verifyLeaderboardConsistency(sortedRankings, leaderboard); err != nil {
			log.Printf("leaderboard consistency warning: %v", err)
		} else {
			log.Println("leaderboard consistency verified")
		}
	}

	if err := verifyTierOrdering(attempts, rankings); err != nil {
		log.Printf("tier ordering warning: %v", err)
	} else {
		log.Println("tier ordering verified")
	}

	displayTopPerformers(sortedRankings, leaderboard, config.Verbose)

	log.Println("result verification completed")
	return nil
}

// verifyLeaderboardConsistency checks whether the leaderboard matches the
// per-player rankings.
func verifyLeaderboardConsistency(sortedRankings, leaderboard []Entry) error {
	if len(leaderboard) == 0 {
		return fmt.Errorf("empty leaderboard")
	}

	topRanking := sortedRankings[0]
	topLeaderboard := leaderboard[0]

	if topRanking.Score != topLeaderboard.Score {
		return fmt.Errorf("top leaderboard score (%d) does not match top ranked score (%d)",
			topLeaderboard.Score, topRanking.Score)
	}

	for i := 1; i < len(leaderboard); i++ {
		if leaderboard[i].Score > leaderboard[i-1].Score {
			return fmt.Errorf("leaderboard not properly sorted: entry %d has higher score than entry %d",
				i, i-1)
		}
	}

	return nil
}

// verifyTierOrdering checks that clean squares average a higher score than
// circles and scribbles. Every player submits one attempt, so the rank score
// is that attempt's score.
func verifyTierOrdering(attempts []Attempt, rankings []Entry) error {
	shapeByPlayer := make(map[string]string, len(attempts))
	for _, a := range attempts {
		shapeByPlayer[a.PlayerID] = a.Shape
	}

	sums := make(map[string]int)
	counts := make(map[string]int)
	for _, entry := range rankings {
		shape := shapeByPlayer[entry.PlayerID]
		if shape == "" {
			continue
		}
		sums[shape] += entry.Score
		counts[shape]++
	}

	avg := func(shape string) (float64, bool) {
		if counts[shape] == 0 {
			return 0, false
		}
		return float64(sums[shape]) / float64(counts[shape]), true
	}

	cleanAvg, haveClean := avg(shapeCleanSquare)
	if !haveClean {
		return fmt.Errorf("no clean squares in sample")
	}

	for _, shape := range []string{shapeCircle, shapeScribble} {
		if other, ok := avg(shape); ok && other >= cleanAvg {
			return fmt.Errorf("%s averaged %.1f, at or above clean squares at %.1f", shape, other, cleanAvg)
		}
	}

	for shape := range counts {
		if mean, ok := avg(shape); ok {
			log.Printf("   %-15s n=%-4d avg score %.1f", shape, counts[shape], mean)
		}
	}
	return nil
}

// displayTopPerformers shows the top performers from rankings and leaderboard.
func displayTopPerformers(sortedRankings, leaderboard []Entry, verbose bool) {
	topN := 10
	if len(sortedRankings) < topN {
		topN = len(sortedRankings)
	}

	log.Printf("top %d performers from rankings:", topN)
	for i := 0; i < topN; i++ {
		entry := sortedRankings[i]
		log.Printf("   %d. %s - score: %d", i+1, entry.PlayerID, entry.Score)
	}

	if len(leaderboard) > 0 {
		leaderboardTopN := topN
		if len(leaderboard) < leaderboardTopN {
			leaderboardTopN = len(leaderboard)
		}

		log.Printf("top %d performers from leaderboard:", leaderboardTopN)
		for i := 0; i < leaderboardTopN; i++ {
			entry := leaderboard[i]
			log.Printf("   %d. %s - score: %d", i+1, entry.PlayerID, entry.Score)
		}
	}

	if verbose && len(sortedRankings) > 0 {
		avgScore := calculateAverageScore(sortedRankings)
		maxScore := sortedRankings[0].Score
		minScore := sortedRankings[len(sortedRankings)-1].Score

		log.Printf(`score statistics:
   average: %.1f
   maximum: %d
   minimum: %d
`, avgScore, maxScore, minScore)
	}
}

// calculateAverageScore calculates the average score from rankings.
func calculateAverageScore(rankings []Entry) float64 {
	if len(rankings) == 0 {
		return 0
	}

	sum := 0
	for _, entry := range rankings {
		sum += entry.Score
	}

	return float64(sum) / float64(len(rankings))
}
