package timeline

import (
	"math"
	"sort"

	"github.com/joseph-ayodele/blueprint-estimator/internal/entity"
)

// Profile is the size of a project as far as scheduling is concerned.
type Profile struct {
	SquareFootage float64
	Floors        int
	LaborHours    float64
}

const (
	weightSquareFootage = 0.4
	weightFloors        = 0.2
	weightLaborHours    = 0.4
)

// ratio is 1 for equal values and falls toward 0 as they diverge.
func ratio(a, b float64) float64 {
	hi := math.Max(a, b)
	if hi == 0 {
		return 1
	}
	return 1 - math.Abs(a-b)/hi
}

// Similarity scores how alike two profiles are, in [0,1]. A metric unknown
// (zero) on either side is left out and the remaining weights rescaled.
func Similarity(a, b Profile) float64 {
	var score, weight float64
	if a.SquareFootage > 0 && b.SquareFootage > 0 {
		score += weightSquareFootage * ratio(a.SquareFootage, b.SquareFootage)
		weight += weightSquareFootage
	}
	if a.Floors > 0 && b.Floors > 0 {
		score += weightFloors * ratio(float64(a.Floors), float64(b.Floors))
		weight += weightFloors
	}
	if a.LaborHours > 0 && b.LaborHours > 0 {
		score += weightLaborHours * ratio(a.LaborHours, b.LaborHours)
		weight += weightLaborHours
	}
	if weight == 0 {
		return 0
	}
	return score / weight
}

type match struct {
	project entity.HistoricalProject
	score   float64
}

// rankSimilar returns up to limit history entries scoring at least threshold
// against p, best first.
func rankSimilar(p Profile, history []entity.HistoricalProject, threshold float64, limit int) []match {
	var out []match
	for _, h := range history {
		s := Similarity(p, Profile{SquareFootage: h.SquareFootage, Floors: h.Floors, LaborHours: h.LaborHours})
		if s >= threshold {
			out = append(out, match{project: h, score: s})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].score > out[j].score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
