package stats_test

import (
	"errors"
	"testing"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/stats"
	"github.com/smartystreets/goconvey/convey"
)

func TestParseFormat(t *testing.T) {
	convey.Convey("ParseFormat", t, func() {
		for in, want := range map[string]stats.Format{"t20": stats.T20, " ODI ": stats.ODI, "test": stats.Test, "T10": stats.T10} {
			f, err := stats.ParseFormat(in)
			convey.So(err, convey.ShouldBeNil)
			convey.So(f, convey.ShouldEqual, want)
		}

		_, err := stats.ParseFormat("hundred")
		convey.So(errors.Is(err, stats.ErrUnknownFormat), convey.ShouldBeTrue)

		convey.So(stats.T20.BowlerOvers(), convey.ShouldEqual, 4)
		convey.So(stats.ODI.BowlerOvers(), convey.ShouldEqual, 10)
		convey.So(stats.T10.BowlerOvers(), convey.ShouldEqual, 2)
		convey.So(stats.Test.BowlerOvers(), convey.ShouldEqual, 0)
	})
}

func TestFormatLimits(t *testing.T) {
	convey.Convey("Only a Test has two innings per side", t, func() {
		convey.So(stats.Test.Innings(), convey.ShouldEqual, 2)
		convey.So(stats.Test.MaxWickets(), convey.ShouldEqual, 20)
		for _, f := range []stats.Format{stats.T20, stats.ODI, stats.T10} {
			convey.So(f.Innings(), convey.ShouldEqual, 1)
			convey.So(f.MaxWickets(), convey.ShouldEqual, 10)
		}
	})
}

func TestValidate(t *testing.T) {
	convey.Convey("Given a well-formed all-round performance", t, func() {
		perf := model.MatchPerformance{
			PlayerID: "p1", Runs: 42, BallsFaced: 30, Fours: 4, Sixes: 2,
			Overs: model.Overs{Complete: 4}, RunsConceded: 28, Wickets: 2, BowledOrLBW: 1, Maidens: 1,
			Catches: 1,
		}

		convey.Convey("It passes in T20", func() {
			convey.So(stats.Validate(stats.T20, perf), convey.ShouldBeNil)
		})

		convey.Convey("A fifth over is rejected in T20 but fine in a Test", func() {
			perf.Overs = model.Overs{Complete: 4, Balls: 1}
			convey.So(errors.Is(stats.Validate(stats.T20, perf), stats.ErrMalformed), convey.ShouldBeTrue)
			convey.So(stats.Validate(stats.Test, perf), convey.ShouldBeNil)
		})

		convey.Convey("Every malformed field is reported at once", func() {
			perf.Runs = 10
			perf.Catches = -1
			perf.BowledOrLBW = 3
			perf.Maidens = 5
			perf.Overs.Balls = 6
			err := stats.Validate(stats.ODI, perf)
			convey.So(errors.Is(err, stats.ErrMalformed), convey.ShouldBeTrue)
			msg := err.Error()
			convey.So(msg, convey.ShouldContainSubstring, "p1")
			convey.So(msg, convey.ShouldContainSubstring, "catches is negative")
			convey.So(msg, convey.ShouldContainSubstring, "bowled_or_lbw exceeds wickets")
			convey.So(msg, convey.ShouldContainSubstring, "maidens exceeds complete overs")
			convey.So(msg, convey.ShouldContainSubstring, "boundaries account for 28 runs")
			convey.So(msg, convey.ShouldContainSubstring, "6 balls in the current over")
		})

		convey.Convey("More than ten wickets is impossible in one innings", func() {
			perf.Wickets = 11
			err := stats.Validate(stats.ODI, perf)
			convey.So(errors.Is(err, stats.ErrMalformed), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "wickets exceeds 10")
		})

		convey.Convey("A Test bowler can take wickets in both innings", func() {
			perf.Overs = model.Overs{Complete: 68}
			perf.Wickets = 19
			convey.So(stats.Validate(stats.Test, perf), convey.ShouldBeNil)

			perf.Wickets = 21
			err := stats.Validate(stats.Test, perf)
			convey.So(errors.Is(err, stats.ErrMalformed), convey.ShouldBeTrue)
			convey.So(err.Error(), convey.ShouldContainSubstring, "wickets exceeds 20")
		})

		convey.Convey("An unknown role is rejected", func() {
			perf.Role = "coach"
			convey.So(stats.Validate(stats.T20, perf), convey.ShouldNotBeNil)
		})
	})
}

func TestValidateAll(t *testing.T) {
	convey.Convey("ValidateAll rejects a player reported twice", t, func() {
		perfs := []model.MatchPerformance{{PlayerID: "a"}, {PlayerID: "b"}, {PlayerID: "a"}}
		err := stats.ValidateAll(stats.T20, perfs)
		convey.So(errors.Is(err, stats.ErrDuplicate), convey.ShouldBeTrue)
		convey.So(errors.Is(err, stats.ErrMalformed), convey.ShouldBeFalse)

		convey.So(stats.ValidateAll(stats.T20, perfs[:2]), convey.ShouldBeNil)
	})
}
