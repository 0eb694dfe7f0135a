package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	service "github.com/okian/wicket/internal/app"
	"github.com/okian/wicket/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

// eventually polls cond until it holds or the timeout elapses.
func eventually(timeout time.Duration, cond func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func rankedPoints(svc *service.Service, matchID, rosterID string) decimal.Decimal {
	e, err := svc.Rank(context.Background(), matchID, rosterID)
	if err != nil {
		return decimal.NewFromInt(-1)
	}
	return e.Points
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a running service with two rosters in one match", t, func() {
		svc := newService()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		// r2 swaps the captaincy: p07 captains and p01 is vice.
		sel2 := legalSelection()
		sel2.CaptainID, sel2.ViceCaptainID = "p07", "p01"

		_, _, err := svc.SubmitRoster(ctx, model.Roster{ID: "r1", MatchID: "m1", Selection: legalSelection()})
		So(err, ShouldBeNil)
		_, _, err = svc.SubmitRoster(ctx, model.Roster{ID: "r2", MatchID: "m1", Selection: sel2})
		So(err, ShouldBeNil)

		perfs := []model.MatchPerformance{
			// 10 runs: 10 points.
			{PlayerID: "p01", Runs: 10, BallsFaced: 12, Dismissed: true},
			// One caught wicket over a four-over spell at 10 an over: 25 points.
			{PlayerID: "p07", Overs: model.Overs{Complete: 4}, RunsConceded: 40, Wickets: 1},
		}

		Convey("When the first scorecard is published", func() {
			pub, err := svc.PublishPerformances(ctx, model.Scorecard{MatchID: "m1", Revision: 1, Performances: perfs})
			So(err, ShouldBeNil)
			So(pub.Jobs, ShouldEqual, 2)

			Convey("Then the workers rank both rosters", func() {
				// r1: 10*2 + 25*1.5 = 57.5, r2: 25*2 + 10*1.5 = 65
				ok := eventually(5*time.Second, func() bool {
					return rankedPoints(svc, "m1", "r1").Equal(decimal.RequireFromString("57.5")) &&
						rankedPoints(svc, "m1", "r2").Equal(decimal.RequireFromString("65"))
				})
				So(ok, ShouldBeTrue)

				top, err := svc.TopN(ctx, "m1", 10)
				So(err, ShouldBeNil)
				So(len(top), ShouldEqual, 2)
				So(top[0].RosterID, ShouldEqual, "r2")
				So(top[0].Rank, ShouldEqual, 1)
				So(top[1].RosterID, ShouldEqual, "r1")
				So(top[1].Rank, ShouldEqual, 2)
			})

			Convey("And a synchronous score matches the ranked total", func() {
				sr, err := svc.Score(ctx, "r1")
				So(err, ShouldBeNil)
				So(sr.Total.Equal(decimal.RequireFromString("57.5")), ShouldBeTrue)
				So(sr.Revision, ShouldEqual, 1)
				So(sr.TableVersion, ShouldEqual, "v1")
				So(len(sr.Players), ShouldEqual, 11)
			})

			Convey("And the workers publish the scored view", func() {
				ok := eventually(5*time.Second, func() bool {
					sr, found := svc.LastScore(ctx, "r2")
					return found && sr.Revision == 1
				})
				So(ok, ShouldBeTrue)
			})

			Convey("And a corrected scorecard replaces the totals", func() {
				ok := eventually(5*time.Second, func() bool {
					return rankedPoints(svc, "m1", "r1").Equal(decimal.RequireFromString("57.5"))
				})
				So(ok, ShouldBeTrue)

				corrected := []model.MatchPerformance{
					// 30 runs with two fours: 30 + 2 + 4 = 36 points.
					{PlayerID: "p01", Runs: 30, BallsFaced: 25, Fours: 2, Dismissed: true},
					perfs[1],
				}
				_, err := svc.PublishPerformances(ctx, model.Scorecard{MatchID: "m1", Revision: 2, Performances: corrected})
				So(err, ShouldBeNil)

				// r1: 36*2 + 37.5 = 109.5, r2: 50 + 36*1.5 = 104
				ok = eventually(5*time.Second, func() bool {
					return rankedPoints(svc, "m1", "r1").Equal(decimal.RequireFromString("109.5")) &&
						rankedPoints(svc, "m1", "r2").Equal(decimal.RequireFromString("104"))
				})
				So(ok, ShouldBeTrue)
			})
		})

		Convey("When a roster is submitted after the scorecard", func() {
			_, err := svc.PublishPerformances(ctx, model.Scorecard{MatchID: "m1", Revision: 1, Performances: perfs})
			So(err, ShouldBeNil)
			_, _, err = svc.SubmitRoster(ctx, model.Roster{ID: "late", MatchID: "m1", Selection: legalSelection()})
			So(err, ShouldBeNil)

			Convey("Then it is scored without a new publication", func() {
				ok := eventually(5*time.Second, func() bool {
					return rankedPoints(svc, "m1", "late").Equal(decimal.RequireFromString("57.5"))
				})
				So(ok, ShouldBeTrue)
			})
		})
	})
}

func TestServiceIntegration_ManyRosters(t *testing.T) {
	Convey("Given many rosters across two matches", t, func() {
		svc := newService(service.WithWorkerCount(4), service.WithQueueSize(1000))
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		const perMatch = 50
		for _, match := range []string{"m1", "m2"} {
			for i := 0; i < perMatch; i++ {
				_, _, err := svc.SubmitRoster(ctx, model.Roster{
					ID:        fmt.Sprintf("%s-r%03d", match, i),
					MatchID:   match,
					Selection: legalSelection(),
				})
				So(err, ShouldBeNil)
			}
		}

		Convey("When both matches publish scorecards", func() {
			for _, match := range []string{"m1", "m2"} {
				pub, err := svc.PublishPerformances(ctx, model.Scorecard{
					MatchID:      match,
					Revision:     1,
					Performances: []model.MatchPerformance{{PlayerID: "p03", Runs: 4, BallsFaced: 3, Fours: 1}},
				})
				So(err, ShouldBeNil)
				So(pub.Jobs, ShouldEqual, perMatch)
			}

			Convey("Then every roster is ranked in its own match with a shared rank", func() {
				ok := eventually(10*time.Second, func() bool {
					top1, _ := svc.TopN(ctx, "m1", perMatch)
					top2, _ := svc.TopN(ctx, "m2", perMatch)
					return len(top1) == perMatch && len(top2) == perMatch
				})
				So(ok, ShouldBeTrue)

				top, err := svc.TopN(ctx, "m1", perMatch)
				So(err, ShouldBeNil)
				for i, e := range top {
					// 4 runs + 1 four = 5 points for everyone.
					So(e.Points.Equal(decimal.NewFromInt(5)), ShouldBeTrue)
					So(e.Rank, ShouldEqual, 1)
					if i > 0 {
						So(e.RosterID > top[i-1].RosterID, ShouldBeTrue)
					}
				}
				So(svc.GetStats()["rankedRosters"], ShouldEqual, 2*perMatch)
			})
		})
	})
}
