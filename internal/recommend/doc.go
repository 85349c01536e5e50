// Package recommend ranks practice problems for a learner.
//
// A run starts from the problem the learner just worked on. Candidates come from the
// problem's similar list, supplemented from the difficulty buckets of weakly mastered
// topics. Every candidate the learner has not yet passed is scored on six metrics, and the
// metrics are combined with weights derived from the learner's trailing window of past
// metric vectors by ideal-point deviation. The best two candidates replace the learner's
// stored recommendation.
package recommend
