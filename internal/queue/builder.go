package queue

import (
	"sort"
	"time"

	"github.com/avelar/adapt/internal/config"
)

// Request describes one session- or day-scoped queue build.
type Request struct {
	UserID               string
	SessionBudgetMinutes int
	MaxNewCards          int
	MaxReviewCards       int
	// NewReviewRatio is the target fraction of new cards in the queue, 0..1.
	NewReviewRatio float64
}

// QueuedCard is one ranked queue entry. It is ephemeral: computed per build
// and never persisted past the session.
type QueuedCard struct {
	ItemID           string     `json:"item_id"`
	Priority         float64    `json:"priority"`
	Breakdown        Breakdown  `json:"breakdown"`
	ReviewType       ReviewType `json:"review_type"`
	EstimatedSeconds int        `json:"estimated_seconds"`
}

// Builder assembles the final ordered queue from ranked candidates.
type Builder struct {
	cfg    config.QueueConfig
	ranker *Ranker
}

// NewBuilder creates a builder sharing the ranker's configuration.
func NewBuilder(cfg config.QueueConfig) *Builder {
	return &Builder{cfg: cfg, ranker: NewRanker(cfg)}
}

// Build ranks the candidates and selects the queue: top priority first
// within each pool, new cards interleaved at the requested ratio, stopping
// at the time budget or the per-type caps. Ties break on item ID so a build
// with unchanged state reproduces the same queue.
func (b *Builder) Build(req Request, candidates []Candidate, now time.Time) []QueuedCard {
	var newPool, reviewPool []QueuedCard
	for _, c := range candidates {
		if !c.Eligibility.Eligible {
			continue
		}
		priority, breakdown := b.ranker.Score(c, now)
		est := c.EstimatedSeconds
		if est <= 0 {
			est = b.cfg.DefaultItemSeconds
		}
		card := QueuedCard{
			ItemID:           c.Item.ID,
			Priority:         priority,
			Breakdown:        breakdown,
			ReviewType:       c.Type(),
			EstimatedSeconds: est,
		}
		if card.ReviewType == TypeNew {
			newPool = append(newPool, card)
		} else {
			reviewPool = append(reviewPool, card)
		}
	}

	byPriority := func(pool []QueuedCard) func(i, j int) bool {
		return func(i, j int) bool {
			if pool[i].Priority != pool[j].Priority {
				return pool[i].Priority > pool[j].Priority
			}
			return pool[i].ItemID < pool[j].ItemID
		}
	}
	sort.Slice(newPool, byPriority(newPool))
	sort.Slice(reviewPool, byPriority(reviewPool))

	budgetSeconds := req.SessionBudgetMinutes * 60
	var out []QueuedCard
	var elapsed, newTaken, reviewTaken int

	takeNew := func() bool {
		return len(newPool) > 0 && newTaken < req.MaxNewCards
	}
	takeReview := func() bool {
		return len(reviewPool) > 0 && reviewTaken < req.MaxReviewCards
	}

	for takeNew() || takeReview() {
		wantNew := float64(newTaken) < req.NewReviewRatio*float64(len(out)+1)

		var card QueuedCard
		switch {
		case wantNew && takeNew():
			card, newPool = newPool[0], newPool[1:]
			newTaken++
		case takeReview():
			card, reviewPool = reviewPool[0], reviewPool[1:]
			reviewTaken++
		case takeNew():
			card, newPool = newPool[0], newPool[1:]
			newTaken++
		default:
			return out
		}

		if budgetSeconds > 0 && elapsed+card.EstimatedSeconds > budgetSeconds && len(out) > 0 {
			return out
		}
		elapsed += card.EstimatedSeconds
		out = append(out, card)
	}
	return out
}
