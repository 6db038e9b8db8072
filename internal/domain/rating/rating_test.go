package rating_test

import (
	"errors"
	"testing"

	"github.com/Sajal133/truerate-api/internal/domain/rating"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSentimentToRating(t *testing.T) {
	Convey("Given the sentiment to rating map", t, func() {
		Convey("Then anchors map exactly", func() {
			So(rating.SentimentToRating(-1), ShouldEqual, 1.0)
			So(rating.SentimentToRating(0), ShouldEqual, 3.0)
			So(rating.SentimentToRating(1), ShouldEqual, 5.0)
		})

		Convey("Then it is monotonically non-decreasing", func() {
			prev := rating.SentimentToRating(-1)
			for s := -1.0; s <= 1.0; s += 0.01 {
				r := rating.SentimentToRating(s)
				So(r, ShouldBeGreaterThanOrEqualTo, prev)
				prev = r
			}
		})

		Convey("Then out-of-range sentiment is clamped", func() {
			So(rating.SentimentToRating(-3), ShouldEqual, 1.0)
			So(rating.SentimentToRating(3), ShouldEqual, 5.0)
		})
	})
}

func TestCalculator(t *testing.T) {
	Convey("Given weights that do not sum to one", t, func() {
		_, err := rating.New(0.5, 0.6)

		Convey("Then construction fails", func() {
			So(errors.Is(err, rating.ErrInvalidWeights), ShouldBeTrue)
		})

		Convey("And weights within tolerance are accepted", func() {
			c, err := rating.New(0.3, 0.7005)
			So(err, ShouldBeNil)
			So(c.StarWeight(), ShouldEqual, 0.3)
		})
	})

	Convey("Given the default calculator", t, func() {
		c := rating.NewDefault()

		Convey("When the review is sarcastic with high confidence", func() {
			res := c.Calculate(rating.Params{
				Stars: 5, Sentiment: -0.7, Credibility: 1, IsSarcastic: true, SarcasmConfidence: 0.9,
			})

			Convey("Then the sentiment rating is reflected around three", func() {
				b := res.Components
				So(b.SentimentAsRating, ShouldAlmostEqual, 1.6, 1e-9)
				So(b.EffectiveSentimentRating, ShouldAlmostEqual, 6-b.SentimentAsRating, 1e-9)
				So(b.BaseRatingBeforeCred, ShouldAlmostEqual, 4.52, 1e-9)
				So(res.AdjustedRating, ShouldAlmostEqual, 4.52, 1e-9)
				So(b.NeutralityFactor, ShouldEqual, 0)
			})
		})

		Convey("When sarcasm confidence is below the cut-off", func() {
			res := c.Calculate(rating.Params{
				Stars: 5, Sentiment: -0.7, Credibility: 1, IsSarcastic: true, SarcasmConfidence: 0.4,
			})

			Convey("Then no inversion happens", func() {
				So(res.Components.EffectiveSentimentRating, ShouldAlmostEqual, 1.6, 1e-9)
				So(res.AdjustedRating, ShouldAlmostEqual, 2.28, 1e-9)
			})
		})

		Convey("When credibility is low", func() {
			res := c.Calculate(rating.Params{Stars: 5, Sentiment: 1, Credibility: 0.1})

			Convey("Then the rating is pulled toward neutral", func() {
				So(res.Components.BaseRatingBeforeCred, ShouldEqual, 5.0)
				So(res.Components.NeutralityFactor, ShouldEqual, 0.75)
				So(res.AdjustedRating, ShouldEqual, 4.25)
			})
		})

		Convey("When credibility is zero", func() {
			res := c.Calculate(rating.Params{Stars: 1, Sentiment: -1, Credibility: 0})

			Convey("Then the rating is halfway to neutral", func() {
				So(res.AdjustedRating, ShouldEqual, 2.0)
			})
		})

		Convey("When inputs are out of range", func() {
			wild := c.Calculate(rating.Params{Stars: 9, Sentiment: 4, Credibility: 7})
			sane := c.Calculate(rating.Params{Stars: 5, Sentiment: 1, Credibility: 1})

			Convey("Then they are clamped", func() {
				So(wild, ShouldResemble, sane)
				So(wild.AdjustedRating, ShouldEqual, 5.0)
			})
		})

		Convey("When calculating the same input twice", func() {
			p := rating.Params{Stars: 3, Sentiment: 0.37, Credibility: 0.33, IsSarcastic: true, SarcasmConfidence: 0.6}
			So(c.Calculate(p), ShouldResemble, c.Calculate(p))
		})

		Convey("When using the simple blend", func() {
			So(c.CalculateSimple(4, 0.5), ShouldEqual, 4.0)
			So(c.CalculateSimple(4, 0.5), ShouldEqual, c.Calculate(rating.DefaultParams(4, 0.5)).AdjustedRating)
		})

		Convey("When calculating a batch", func() {
			ps := []rating.Params{
				rating.DefaultParams(5, -0.7),
				{Stars: 2, Sentiment: 0.1, Credibility: 0.2},
			}
			out := c.CalculateBatch(ps)

			Convey("Then each entry matches a single calculation", func() {
				So(len(out), ShouldEqual, 2)
				So(out[0], ShouldResemble, c.Calculate(ps[0]))
				So(out[1], ShouldResemble, c.Calculate(ps[1]))
			})
		})
	})
}
