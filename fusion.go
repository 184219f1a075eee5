package imago

import (
	"fmt"
	"sort"
)

// FusionKind names a strategy for combining per-document scores from the
// visual query engine (§4.H) and the caption index's text search into a
// single ranking.
type FusionKind string

const (
	// WeightedSumFusion combines scores as visualScore*visualWeight +
	// captionScore*captionWeight.
	WeightedSumFusion FusionKind = "weighted_sum"

	// ReciprocalRankFusion combines result lists by rank rather than raw
	// score, so it needs no cross-modality score normalization.
	ReciprocalRankFusion FusionKind = "reciprocal_rank"

	// MaxFusion keeps the better of the two modalities' scores per document.
	MaxFusion FusionKind = "max"

	// MinFusion keeps the worse of the two modalities' scores, restricted to
	// documents present in both result sets.
	MinFusion FusionKind = "min"
)

// Fusion combines a visual-query result set and a caption-search result set
// into one score per document (§10.5 "score fusion"). Visual scores are
// dot-product similarities from InvertedIndex.Query (higher is better);
// caption scores are BM25-style relevance (also higher is better) — both
// modalities are "higher is better", unlike the L2/cosine distances used
// elsewhere in this package.
type Fusion interface {
	Kind() FusionKind
	Combine(visual, caption map[int]float64) map[int]float64
}

// FusionConfig parameterizes WeightedSumFusion and ReciprocalRankFusion.
type FusionConfig struct {
	VisualWeight  float64
	CaptionWeight float64
	// K is the rank-fusion constant (Cormack, Clarke & Büttcher 2009);
	// smaller K weights top ranks more heavily. Default 60.
	K float64
}

// DefaultFusionConfig weights both modalities equally.
func DefaultFusionConfig() *FusionConfig {
	return &FusionConfig{VisualWeight: 1, CaptionWeight: 1, K: 60}
}

// NewFusion constructs a Fusion strategy by name. A nil config uses
// DefaultFusionConfig.
func NewFusion(kind FusionKind, config *FusionConfig) (Fusion, error) {
	if config == nil {
		config = DefaultFusionConfig()
	}
	switch kind {
	case WeightedSumFusion:
		return weightedSumFusion{config: config}, nil
	case ReciprocalRankFusion:
		return reciprocalRankFusion{config: config}, nil
	case MaxFusion:
		return maxFusion{}, nil
	case MinFusion:
		return minFusion{}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFusionKind, kind)
	}
}

type weightedSumFusion struct{ config *FusionConfig }

func (weightedSumFusion) Kind() FusionKind { return WeightedSumFusion }

func (f weightedSumFusion) Combine(visual, caption map[int]float64) map[int]float64 {
	combined := make(map[int]float64, len(visual)+len(caption))
	for doc, score := range visual {
		combined[doc] = score * f.config.VisualWeight
	}
	for doc, score := range caption {
		combined[doc] += score * f.config.CaptionWeight
	}
	return combined
}

type reciprocalRankFusion struct{ config *FusionConfig }

func (reciprocalRankFusion) Kind() FusionKind { return ReciprocalRankFusion }

func (f reciprocalRankFusion) Combine(visual, caption map[int]float64) map[int]float64 {
	combined := make(map[int]float64, len(visual)+len(caption))
	for doc, rank := range scoresToRanks(visual) {
		combined[doc] += 1.0 / (f.config.K + float64(rank))
	}
	for doc, rank := range scoresToRanks(caption) {
		combined[doc] += 1.0 / (f.config.K + float64(rank))
	}
	return combined
}

// scoresToRanks assigns 0-indexed ranks in descending score order (both
// modalities here are "higher is better").
func scoresToRanks(scores map[int]float64) map[int]int {
	docs := make([]int, 0, len(scores))
	for doc := range scores {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool { return scores[docs[i]] > scores[docs[j]] })

	ranks := make(map[int]int, len(docs))
	for rank, doc := range docs {
		ranks[doc] = rank
	}
	return ranks
}

type maxFusion struct{}

func (maxFusion) Kind() FusionKind { return MaxFusion }

func (maxFusion) Combine(visual, caption map[int]float64) map[int]float64 {
	combined := make(map[int]float64, len(visual)+len(caption))
	for doc, score := range visual {
		combined[doc] = score
	}
	for doc, score := range caption {
		if existing, ok := combined[doc]; !ok || score > existing {
			combined[doc] = score
		}
	}
	return combined
}

type minFusion struct{}

func (minFusion) Kind() FusionKind { return MinFusion }

func (minFusion) Combine(visual, caption map[int]float64) map[int]float64 {
	combined := make(map[int]float64, len(visual))
	for doc, visualScore := range visual {
		if captionScore, ok := caption[doc]; ok {
			if visualScore < captionScore {
				combined[doc] = visualScore
			} else {
				combined[doc] = captionScore
			}
		}
	}
	return combined
}
