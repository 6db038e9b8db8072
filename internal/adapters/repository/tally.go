package repository

import (
	"github.com/Sajal133/truerate-api/internal/domain/model"
	"github.com/Sajal133/truerate-api/internal/domain/types"
)

// tally accumulates votes into FeedbackStats.
type tally struct {
	s model.FeedbackStats
}

func newTally(storage string) *tally {
	return &tally{s: model.FeedbackStats{ByClass: map[string]model.VoteCount{}, Storage: storage}}
}

func (t *tally) add(class string, vote int) {
	if class == "" {
		class = "unknown"
	}
	t.s.Total++
	vc := t.s.ByClass[class]
	if vote == 1 {
		t.s.Agreements++
		vc.Agree++
	} else {
		if vote == -1 {
			t.s.Disagreements++
		}
		vc.Disagree++
	}
	t.s.ByClass[class] = vc
}

func (t *tally) stats() model.FeedbackStats {
	if t.s.Total > 0 {
		t.s.AccuracyRate = types.Round(float64(t.s.Agreements)/float64(t.s.Total)*100, 1)
	}
	return t.s
}
