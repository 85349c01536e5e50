package recommend

import (
	"context"
	"sort"

	"go.uber.org/zap"
)

// bucketLevel maps a weak mastery level onto the difficulty bucket it is supplemented from.
var bucketLevel = map[Level]Level{
	LevelLow:    LevelLow,
	LevelMedium: LevelMedium,
}

// generateCandidates returns the candidate pool for a problem sorted by ascending ID.
// The similar list is always included. When it is shorter than threshold, every related
// topic at a weak mastery level contributes its bucket of matching difficulty.
// The current problem is never a candidate of itself.
func generateCandidates(ctx context.Context, catalog Catalog, cur *currentProblem, threshold int, log *zap.Logger) []uint {
	set := make(map[uint]struct{}, len(cur.SimilarList))
	for _, id := range cur.SimilarList {
		set[id] = struct{}{}
	}

	if len(set) < threshold {
		topics := append([]string(nil), cur.Topics...)
		sort.Strings(topics)
		for _, topic := range topics {
			want, ok := bucketLevel[cur.Levels[topic]]
			if !ok {
				continue
			}
			buckets, err := catalog.DifficultyBucket(ctx, topic)
			if err != nil {
				log.Warn("Failed to load difficulty bucket",
					zap.String("topic", topic),
					zap.Error(err))
				continue
			}
			for _, id := range buckets[want] {
				set[id] = struct{}{}
			}
		}
	}

	delete(set, cur.ID)
	out := make([]uint, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
