package analyzer

import (
	"sort"

	"github.com/adnan911/Perfect-Square/internal/domain/geom"
)

// cornerSet is the detected-corner view of a normalized path: exactly four
// indices in ascending path order with their (unsmoothed) positions.
type cornerSet struct {
	indices [cornerCount]int
	points  [cornerCount]geom.Point
}

type candidate struct {
	index    int
	strength float64
}

// detectCorners finds the four most corner-like samples of the path.
// Curvature is estimated on a smoothed copy (chord vectors i-chord→i and
// i→i+chord, turn angle via normalized dot product); candidates above the
// turn threshold are taken greedily by descending strength with a minimum
// index separation of len/8. When fewer than four survive, the remainder is
// synthesized by equal index division. Heuristic and approximate: on
// near-circular paths the picks are arbitrary but the invariants still hold.
func detectCorners(norm []geom.Point) cornerSet {
	n := len(norm)
	sm := smooth(norm, smoothHalfWindow)

	var cands []candidate
	for i := edgeMargin; i < n-edgeMargin; i++ {
		if i-chordOffset < 0 || i+chordOffset >= n {
			continue
		}
		in := sm[i].Sub(sm[i-chordOffset])
		out := sm[i+chordOffset].Sub(sm[i])
		if in.Hypot() == 0 || out.Hypot() == 0 {
			continue
		}
		if ang := in.AngleBetween(out); ang > cornerThreshold {
			cands = append(cands, candidate{index: i, strength: ang})
		}
	}

	// Strongest first; ties resolved by path order for determinism.
	sort.Slice(cands, func(i, j int) bool {
		if cands[i].strength != cands[j].strength {
			return cands[i].strength > cands[j].strength
		}
		return cands[i].index < cands[j].index
	})

	minSep := n / 8
	picked := make([]int, 0, cornerCount)
	for _, c := range cands {
		if len(picked) >= cornerCount {
			break
		}
		ok := true
		for _, j := range picked {
			if abs(c.index-j) < minSep {
				ok = false
				break
			}
		}
		if ok {
			picked = append(picked, c.index)
		}
	}

	// Not enough distinct turns; fall back to equal division.
	for k := len(picked); len(picked) < cornerCount; k++ {
		picked = append(picked, k*n/cornerCount)
	}

	sort.Ints(picked)

	var cs cornerSet
	for i := 0; i < cornerCount; i++ {
		cs.indices[i] = picked[i]
		cs.points[i] = norm[picked[i]]
	}
	return cs
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
