package engine

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/avelar/adapt/internal/mastery"
	"github.com/avelar/adapt/internal/queue"
	"github.com/avelar/adapt/internal/srs"
	"github.com/avelar/adapt/internal/store"
)

// QueueRequest describes one queue build.
type QueueRequest struct {
	UserID               string
	SessionBudgetMinutes int
	MaxNewCards          int
	MaxReviewCards       int
	NewReviewRatio       float64
	// Now anchors due/overdue arithmetic; zero means time.Now().
	Now time.Time
}

// Queue is a built session queue.
type Queue struct {
	UserID      string             `json:"user_id"`
	BuiltAt     time.Time          `json:"built_at"`
	Cards       []queue.QueuedCard `json:"cards"`
	NewCount    int                `json:"new_count"`
	ReviewCount int                `json:"review_count"`
}

// BuildQueue assembles a priority-ordered session queue. The build performs
// no writes and is idempotent for unchanged state. An item whose supporting
// records fail to load is skipped and logged; only store-wide failures (or
// ctx cancellation) abort the build.
func (e *Engine) BuildQueue(ctx context.Context, req QueueRequest) (*Queue, error) {
	if req.UserID == "" {
		return nil, &srs.ValidationError{Field: "userID", Value: req.UserID, Msg: "must not be empty"}
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}

	graph, err := e.store.Graph().LoadGraph(ctx)
	if err != nil {
		return nil, err
	}
	snap := graph.Snapshot()

	items, err := e.store.Items().List(ctx)
	if err != nil {
		return nil, err
	}
	scheds, err := e.store.Scheduling().ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	schedByItem := make(map[string]srs.Scheduling, len(scheds))
	for _, s := range scheds {
		schedByItem[s.ItemID] = s
	}
	topicAcc, err := e.store.Statistics().TopicAccuracies(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	stats, err := e.store.Statistics().ListByUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	statsByItem := make(map[string]srs.Statistics, len(stats))
	for _, st := range stats {
		statsByItem[st.ItemID] = st
	}

	levels := topicLevels(items, schedByItem)

	var candidates []queue.Candidate
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sched, seen := schedByItem[item.ID]
		if !seen {
			sched = srs.NewScheduling(req.UserID, item.ID, now)
		}
		if sched.Level == mastery.LevelSuspended {
			continue
		}
		// Reviewed cards wait for their due date; new cards are always fair
		// game for the new-card pool.
		if seen && sched.Due.After(now) {
			continue
		}

		retrievability := 1.0
		if !sched.LastReviewed.IsZero() {
			curve, err := e.store.Curves().Get(ctx, req.UserID, item.ID)
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				e.log.Warn("skipping item, curve load failed",
					zap.String("user", req.UserID), zap.String("item", item.ID), zap.Error(err))
				continue
			}
			if err == nil {
				retrievability = curve.Retrievability(now.Sub(sched.LastReviewed))
			}
		}

		accuracy := 1.0
		if acc, ok := topicAcc[item.Topic]; ok {
			accuracy = acc.Accuracy
		}

		estimated := 0
		if st, ok := statsByItem[item.ID]; ok && st.AvgResponseMs > 0 {
			estimated = int(st.AvgResponseMs / 1000)
		}

		candidates = append(candidates, queue.Candidate{
			Item:             item,
			Scheduling:       sched,
			Retrievability:   retrievability,
			TopicAccuracy:    accuracy,
			Eligibility:      snap.Check(item.Topic, levels),
			EstimatedSeconds: estimated,
		})
	}

	cards := e.builder.Build(queue.Request{
		UserID:               req.UserID,
		SessionBudgetMinutes: req.SessionBudgetMinutes,
		MaxNewCards:          req.MaxNewCards,
		MaxReviewCards:       req.MaxReviewCards,
		NewReviewRatio:       req.NewReviewRatio,
	}, candidates, now)

	out := &Queue{UserID: req.UserID, BuiltAt: now, Cards: cards}
	for _, card := range cards {
		if card.ReviewType == queue.TypeNew {
			out.NewCount++
		} else {
			out.ReviewCount++
		}
	}
	return out, nil
}

// topicLevels aggregates per-item mastery into a per-topic level for
// prerequisite checks: the median item level, rounded down, over the topic's
// scheduled items. Topics with nothing scheduled are omitted and default to
// learning at check time. Suspended items do not vote.
func topicLevels(items []store.Item, schedByItem map[string]srs.Scheduling) map[string]mastery.Level {
	ranks := map[string][]int{}
	for _, item := range items {
		sched, ok := schedByItem[item.ID]
		if !ok || sched.Level == mastery.LevelSuspended {
			continue
		}
		ranks[item.Topic] = append(ranks[item.Topic], levelRank(sched.Level))
	}

	out := make(map[string]mastery.Level, len(ranks))
	for topic, rs := range ranks {
		sort.Ints(rs)
		out[topic] = rankLevel(rs[(len(rs)-1)/2])
	}
	return out
}

var levelOrder = []mastery.Level{
	mastery.LevelLearning, mastery.LevelYoung, mastery.LevelMature, mastery.LevelMaster,
}

func levelRank(l mastery.Level) int {
	for i, v := range levelOrder {
		if v == l {
			return i
		}
	}
	return 0
}

func rankLevel(r int) mastery.Level {
	if r < 0 || r >= len(levelOrder) {
		return mastery.LevelLearning
	}
	return levelOrder[r]
}
