package credibility_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/Sajal133/truerate-api/internal/domain/credibility"
	"github.com/Sajal133/truerate-api/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScorer_Score(t *testing.T) {
	Convey("Given a credibility scorer with default thresholds", t, func() {
		scorer, err := credibility.New()
		So(err, ShouldBeNil)

		Convey("When the review is empty", func() {
			res := scorer.Score(types.Input{Text: "", Stars: 5})

			Convey("Then it short-circuits as a bot with a single flag", func() {
				So(res.Score, ShouldEqual, 0.1)
				So(res.Classification, ShouldEqual, types.ClassBot)
				So(res.Flags, ShouldResemble, []string{"empty_review"})
			})
		})

		Convey("When the review is a single word with a mismatch", func() {
			res := scorer.Score(types.Input{Text: "  AMAZING  ", Stars: 1}.WithSentiment(0.9))

			Convey("Then no later rule runs", func() {
				So(res.Flags, ShouldResemble, []string{"empty_review"})
			})
		})

		Convey("When the review is a generic phrase", func() {
			res := scorer.Score(types.Input{Text: "Great product!", Stars: 5})

			Convey("Then it scores as a bot", func() {
				So(res.Score, ShouldEqual, 0.2)
				So(res.Classification, ShouldEqual, types.ClassBot)
				So(res.Flags, ShouldResemble, []string{"generic_phrase"})
			})
		})

		Convey("When the review is nuanced and specific", func() {
			text := "The battery life is solid and the screen is bright, but the camera struggles in low light."
			res := scorer.Score(types.Input{Text: text, Stars: 4})

			Convey("Then boosts clamp at 1.0", func() {
				So(res.Score, ShouldEqual, 1.0)
				So(res.Classification, ShouldEqual, types.ClassHuman)
				So(res.Flags, ShouldResemble, []string{"mixed_sentiment_detected", "specific_features_3"})
			})
		})

		Convey("When a short review contradicts its stars", func() {
			text := "This broke after one day and I want a refund now"
			res := scorer.Score(types.Input{Text: text, Stars: 5}.WithSentiment(-0.8))

			Convey("Then the factors compound", func() {
				So(res.Score, ShouldEqual, 0.49)
				So(res.Classification, ShouldEqual, types.ClassLowEffort)
				So(res.Flags, ShouldResemble, []string{"short_review", "star_sentiment_mismatch"})
			})

			Convey("And without sentiment the mismatch rule is skipped", func() {
				res := scorer.Score(types.Input{Text: text, Stars: 5})
				So(res.Score, ShouldEqual, 0.7)
				So(res.Flags, ShouldResemble, []string{"short_review"})
			})
		})

		Convey("When the reviewer has not used the product", func() {
			text := "Just arrived, haven't opened it yet so can't say much about anything."
			res := scorer.Score(types.Input{Text: text, Stars: 5})

			Convey("Then it is a bot", func() {
				So(res.Score, ShouldAlmostEqual, 0.105, 1e-9)
				So(res.Classification, ShouldEqual, types.ClassBot)
				So(res.Flags, ShouldResemble, []string{"short_review", "product_not_used"})
			})
		})

		Convey("When the review is shouted", func() {
			res := scorer.Score(types.Input{Text: "THIS IS THE WORST THING I HAVE EVER BOUGHT", Stars: 1})

			Convey("Then the all-caps factor applies", func() {
				So(res.Score, ShouldEqual, 0.42)
				So(res.Classification, ShouldEqual, types.ClassLowEffort)
				So(res.Flags, ShouldResemble, []string{"short_review", "all_caps"})
			})
		})

		Convey("When the review is long", func() {
			text := strings.TrimSpace(strings.Repeat("word ", 120))
			res := scorer.Score(types.Input{Text: text, Stars: 3})

			Convey("Then both length boosts fire", func() {
				So(res.Flags, ShouldResemble, []string{"detailed_review", "very_detailed"})
				So(res.Score, ShouldEqual, 1.0)
			})
		})

		Convey("When inputs are out of range", func() {
			text := "This broke after one day and I want a refund now"
			clamped := scorer.Score(types.Input{Text: text, Stars: 5}.WithSentiment(-1))
			wild := scorer.Score(types.Input{Text: text, Stars: 42}.WithSentiment(-7))

			Convey("Then they are clamped, not rejected", func() {
				So(wild, ShouldResemble, clamped)
			})
		})

		Convey("When scoring the same input twice", func() {
			in := types.Input{Text: "Pretty decent blender, though loud.", Stars: 4}.WithSentiment(0.3)
			So(scorer.Score(in), ShouldResemble, scorer.Score(in))
		})

		Convey("When scoring a batch", func() {
			ins := []types.Input{
				{Text: "", Stars: 5},
				{Text: "Great product!", Stars: 5},
				{Text: "THIS IS THE WORST THING I HAVE EVER BOUGHT", Stars: 1},
			}
			out := scorer.ScoreBatch(ins)

			Convey("Then each result equals the single-item result", func() {
				So(len(out), ShouldEqual, len(ins))
				for i, in := range ins {
					So(out[i], ShouldResemble, scorer.Score(in))
				}
			})
		})
	})
}

func TestScorer_Thresholds(t *testing.T) {
	Convey("Given custom thresholds", t, func() {
		Convey("When they are valid", func() {
			scorer, err := credibility.New(credibility.WithThresholds(types.Thresholds{Bot: 0.1, LowEffort: 0.15}))
			So(err, ShouldBeNil)

			Convey("Then classification follows them", func() {
				res := scorer.Score(types.Input{Text: "Great product!", Stars: 5})
				So(res.Classification, ShouldEqual, types.ClassHuman)
			})
		})

		Convey("When they are out of order", func() {
			_, err := credibility.New(credibility.WithThresholds(types.Thresholds{Bot: 0.6, LowEffort: 0.3}))

			Convey("Then construction fails", func() {
				So(errors.Is(err, types.ErrInvalidThresholds), ShouldBeTrue)
			})
		})
	})
}
