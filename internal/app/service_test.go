package service_test

import (
	"context"
	"errors"
	"testing"

	service "github.com/Sajal133/truerate-api/internal/app"
	"github.com/Sajal133/truerate-api/internal/domain/rating"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	"github.com/Sajal133/truerate-api/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
}

func newService(opts ...service.Option) *service.Service {
	svc, err := service.New(opts...)
	So(err, ShouldBeNil)
	return svc
}

func TestService_New(t *testing.T) {
	Convey("Given default options", t, func() {
		svc := newService()
		st := svc.Settings()
		So(st.StarWeight, ShouldEqual, rating.DefaultStarWeight)
		So(st.SentimentWeight, ShouldEqual, rating.DefaultSentimentWeight)
		So(st.SentimentMode, ShouldEqual, "vader")
		So(st.SarcasmMode, ShouldEqual, "rule-based")
		So(st.WeightStore, ShouldEqual, "memory")
		So(st.Thresholds, ShouldResemble, types.DefaultThresholds)
	})

	Convey("Given invalid weights", t, func() {
		_, err := service.New(service.WithRatingWeights(0.5, 0.6))
		So(errors.Is(err, rating.ErrInvalidWeights), ShouldBeTrue)
	})

	Convey("Given invalid thresholds", t, func() {
		_, err := service.New(service.WithThresholds(types.Thresholds{Bot: 0.7, LowEffort: 0.6}))
		So(errors.Is(err, types.ErrInvalidThresholds), ShouldBeTrue)
	})
}

func TestService_Analyze(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh service", t, func() {
		svc := newService()

		Convey("A generic five-star blurb is flagged and pulled toward neutral", func() {
			a, err := svc.Analyze(ctx, service.Review{Text: "Great product!", Stars: 5})
			So(err, ShouldBeNil)
			So(a.RequestID, ShouldNotBeEmpty)
			So(a.OriginalStars, ShouldEqual, 5)
			So(a.Credibility.Classification, ShouldEqual, types.ClassBot)
			So(a.Credibility.Score, ShouldEqual, 0.2)
			So(a.Credibility.BaseScore, ShouldEqual, 0.2)
			So(a.Credibility.Flags, ShouldResemble, []string{"generic_phrase"})
			So(a.Sentiment.Score, ShouldBeGreaterThan, 0.5)
			So(a.AdjustedRating, ShouldBeBetween, 3, 5)
			So(a.RatingDelta, ShouldBeLessThan, 0)
			So(a.Components.NeutralityFactor, ShouldAlmostEqual, 0.5, 1e-9)
		})

		Convey("A provided sentiment skips the analyzer", func() {
			s := -0.7
			a, err := svc.Analyze(ctx, service.Review{Text: "Oh great, it broke after 2 days!", Stars: 5, Sentiment: &s})
			So(err, ShouldBeNil)
			So(a.Sentiment.Model, ShouldEqual, "provided")
			So(a.Sentiment.Score, ShouldEqual, -0.7)
			So(a.Sarcasm.IsSarcastic, ShouldBeTrue)
			So(a.Components.SarcasmDetected, ShouldBeTrue)
		})

		Convey("Each analysis gets its own request id", func() {
			a1, _ := svc.Analyze(ctx, service.Review{Text: "fine", Stars: 3})
			a2, _ := svc.Analyze(ctx, service.Review{Text: "fine", Stars: 3})
			So(a1.RequestID, ShouldNotEqual, a2.RequestID)
			So(a1.AdjustedRating, ShouldEqual, a2.AdjustedRating)
		})
	})

	Convey("Given learned weights from agreement feedback", t, func() {
		fb := service.Feedback{Text: "Great product!", Stars: 5, PredictedClass: "bot", UserVote: 1}

		Convey("The correction is applied and the review reclassified", func() {
			svc := newService()
			for range 2 {
				_, err := svc.SubmitFeedback(ctx, fb)
				So(err, ShouldBeNil)
			}
			a, err := svc.Analyze(ctx, service.Review{Text: "Great product!", Stars: 5})
			So(err, ShouldBeNil)
			So(a.Credibility.BaseScore, ShouldEqual, 0.2)
			So(a.Credibility.Score, ShouldAlmostEqual, 0.35, 1e-9)
			So(a.Credibility.LearnedAdjustment, ShouldAlmostEqual, 0.15, 1e-9)
			So(a.Credibility.Classification, ShouldEqual, types.ClassLowEffort)
		})

		Convey("The correction is skipped when disabled", func() {
			svc := newService(service.WithApplyLearnedWeights(false))
			for range 2 {
				_, _ = svc.SubmitFeedback(ctx, fb)
			}
			a, _ := svc.Analyze(ctx, service.Review{Text: "Great product!", Stars: 5})
			So(a.Credibility.Score, ShouldEqual, 0.2)
			So(a.Credibility.Classification, ShouldEqual, types.ClassBot)
		})
	})
}

func TestService_AnalyzeBatch(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service with a batch limit of 3", t, func() {
		svc := newService(service.WithMaxBatchSize(3))

		Convey("A batch is analyzed in order and summarised", func() {
			reviews := []service.Review{
				{Text: "Great product!", Stars: 5},
				{Text: "The battery life is solid and the screen is bright, but the camera struggles in low light.", Stars: 4},
				{Text: "", Stars: 1},
			}
			res, err := svc.AnalyzeBatch(ctx, reviews)
			So(err, ShouldBeNil)
			So(res.Results, ShouldHaveLength, 3)
			for i, it := range res.Results {
				So(it.Input, ShouldResemble, reviews[i])
				single, _ := svc.Analyze(ctx, reviews[i])
				So(it.Analysis.AdjustedRating, ShouldEqual, single.AdjustedRating)
			}

			sum := res.Summary
			So(sum.TotalReviews, ShouldEqual, 3)
			So(sum.OriginalAverage, ShouldEqual, 3.33)
			So(sum.BotCount, ShouldEqual, 2)
			So(sum.HumanCount, ShouldEqual, 1)
			So(sum.BotPercentage, ShouldAlmostEqual, 66.7, 1e-9)
			So(sum.AdjustedStdDev, ShouldBeGreaterThan, 0)
			So(sum.TruthGap, ShouldAlmostEqual, sum.AdjustedAverage-sum.OriginalAverage, 0.011)
		})

		Convey("An empty batch has an empty summary", func() {
			res, err := svc.AnalyzeBatch(ctx, nil)
			So(err, ShouldBeNil)
			So(res.Results, ShouldBeEmpty)
			So(res.Summary, ShouldResemble, service.BatchSummary{})
		})

		Convey("An oversized batch is rejected", func() {
			_, err := svc.AnalyzeBatch(ctx, make([]service.Review, 4))
			So(errors.Is(err, service.ErrBatchTooLarge), ShouldBeTrue)
		})
	})
}

func TestService_SubmitFeedback(t *testing.T) {
	ctx := context.Background()

	Convey("Given a fresh service", t, func() {
		svc := newService()
		fb := service.Feedback{Text: "Great product!", Stars: 5, PredictedClass: "human", UserVote: -1}

		Convey("Valid feedback updates the learner", func() {
			ack, err := svc.SubmitFeedback(ctx, fb)
			So(err, ShouldBeNil)
			So(ack.Success, ShouldBeTrue)
			So(ack.AdjustmentsApplied, ShouldEqual, 5)
			So(ack.TextHash, ShouldHaveLength, 16)
			So(ack.FeedbackID, ShouldNotBeEmpty)
			w, ok := svc.Learner().Weight("human:very_short")
			So(ok, ShouldBeTrue)
			So(w, ShouldAlmostEqual, -0.05, 1e-12)
		})

		Convey("A repeated feedback id is acknowledged but not applied", func() {
			fb.FeedbackID = "fb-123"
			_, err := svc.SubmitFeedback(ctx, fb)
			So(err, ShouldBeNil)
			ack, err := svc.SubmitFeedback(ctx, fb)
			So(err, ShouldBeNil)
			So(ack.Duplicate, ShouldBeTrue)
			So(ack.AdjustmentsApplied, ShouldEqual, 0)
			w, _ := svc.Learner().Weight("human:very_short")
			So(w, ShouldAlmostEqual, -0.05, 1e-12)
		})

		Convey("Invalid votes and classes are rejected", func() {
			bad := fb
			bad.UserVote = 0
			_, err := svc.SubmitFeedback(ctx, bad)
			So(errors.Is(err, service.ErrInvalidFeedback), ShouldBeTrue)

			bad = fb
			bad.PredictedClass = "robot"
			_, err = svc.SubmitFeedback(ctx, bad)
			So(errors.Is(err, service.ErrInvalidFeedback), ShouldBeTrue)

			bad = fb
			bad.Text = "   "
			_, err = svc.SubmitFeedback(ctx, bad)
			So(errors.Is(err, service.ErrInvalidFeedback), ShouldBeTrue)

			So(svc.Learner().Weights(), ShouldBeEmpty)
		})

		Convey("Feedback stats summarise the votes", func() {
			for range 5 {
				_, _ = svc.SubmitFeedback(ctx, service.Feedback{Text: "Great product!", Stars: 5, PredictedClass: "bot", UserVote: -1})
			}
			_, _ = svc.SubmitFeedback(ctx, service.Feedback{Text: "It is fine I guess", Stars: 3, PredictedClass: "bot", UserVote: -1})
			_, _ = svc.SubmitFeedback(ctx, service.Feedback{Text: "It is fine I guess", Stars: 3, PredictedClass: "human", UserVote: 1})

			rep, err := svc.FeedbackStats(ctx)
			So(err, ShouldBeNil)
			// the repeated text and vote collapse into one record
			So(rep.FeedbackStats.Total, ShouldEqual, 3)
			So(rep.FeedbackStats.Agreements, ShouldEqual, 1)
			So(rep.LearnerStats.TotalPatterns, ShouldBeGreaterThan, 0)
			So(rep.ClassAdjustments["bot"], ShouldEqual, 0)
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a started service", t, func() {
		svc := newService()
		So(svc.Start(context.Background()), ShouldBeNil)
		So(svc.Start(context.Background()), ShouldBeNil)

		stats := svc.GetStats()
		So(stats["started"], ShouldEqual, true)
		So(stats["weightsFrom"], ShouldEqual, "empty")
		So(stats["weightStore"], ShouldEqual, "memory")

		Convey("When stopped", func() {
			svc.Stop()
			svc.Stop()
			So(svc.GetStats()["started"], ShouldEqual, false)

			Convey("It cannot be started again", func() {
				err := svc.Start(context.Background())
				So(errors.Is(err, service.ErrStopped), ShouldBeTrue)
				So(svc.GetStats()["started"], ShouldEqual, false)
			})
		})
	})
}
