package recommend

import "sort"

// Rank scores every candidate with w and returns them ordered by descending score,
// ties broken by ascending problem ID.
func Rank(candidates []Scored, w WeightVector) []Scored {
	ranked := make([]Scored, len(candidates))
	for i, c := range candidates {
		c.Score = w.Dot(c.Metrics)
		ranked[i] = c
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].ProblemID < ranked[j].ProblemID
	})
	return ranked
}

// Top returns the IDs of the first n ranked candidates.
func Top(ranked []Scored, n int) []uint {
	if n > len(ranked) {
		n = len(ranked)
	}
	ids := make([]uint, 0, n)
	for _, c := range ranked[:n] {
		ids = append(ids, c.ProblemID)
	}
	return ids
}
