package weights

import (
	"strconv"

	"github.com/samber/lo"
)

// DefaultPrecision is the number of decimal places weights are rounded to.
const DefaultPrecision = 3

// Weight is one entry of an ordered probability table.
type Weight struct {
	Block  string
	Weight float64
}

// Round rounds v to places decimal digits. The result is the correctly
// rounded decimal representation of the binary value, so exact ties go to
// even.
func Round(v float64, places int) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	return r
}

// Normalize converts counts into weights rounded to precision places that sum
// to exactly 1. The rounding residual is added to the most frequent block;
// ties go to the lexicographically smallest identifier. Empty or all-zero
// input yields no weights.
func Normalize(counts []BlockCount, precision int) []Weight {
	total := lo.SumBy(counts, func(bc BlockCount) int { return bc.Count })
	if total == 0 {
		return []Weight{}
	}

	ret := make([]Weight, len(counts))
	for i, bc := range counts {
		ret[i] = Weight{Block: bc.Block, Weight: Round(float64(bc.Count)/float64(total), precision)}
	}

	sum := lo.SumBy(ret, func(w Weight) float64 { return w.Weight })
	residual := Round(1.0-sum, precision)
	if residual == 0 {
		return ret
	}

	target := 0
	for i, bc := range counts {
		top := counts[target]
		if bc.Count > top.Count || bc.Count == top.Count && bc.Block < top.Block {
			target = i
		}
	}
	ret[target].Weight = Round(ret[target].Weight+residual, precision)
	return ret
}
