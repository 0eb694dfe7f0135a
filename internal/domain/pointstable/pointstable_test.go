package pointstable_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/wicket/internal/domain/model"
	"github.com/okian/wicket/internal/domain/pointstable"
	. "github.com/smartystreets/goconvey/convey"
)

func writeTable(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "points.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write table: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	Convey("Given the default points table", t, func() {
		table := pointstable.Default()

		Convey("Then it is valid and carries the published values", func() {
			So(table.Validate(), ShouldBeNil)
			So(table.Version, ShouldEqual, "v1")
			So(table.Wicket, ShouldEqual, 25)
			So(table.DuckPenalty, ShouldEqual, -2)
			So(table.Economy, ShouldResemble, pointstable.EconomyBonus{MinOvers: 2, Ceiling: 5, Bonus: 6})
			So(table.Captain, ShouldEqual, 2)
			So(table.ViceCaptain, ShouldEqual, 1.5)
			So(len(table.BattingMilestones), ShouldEqual, 3)
		})

		Convey("When cloning and mutating the clone", func() {
			clone := table.Clone()
			clone.BattingMilestones[0].Bonus = 99

			Convey("Then the original keeps its milestones", func() {
				So(table.BattingMilestones[0].Bonus, ShouldEqual, 4)
			})
		})
	})
}

func TestValidate(t *testing.T) {
	Convey("Given a table with several problems", t, func() {
		table := pointstable.Default()
		table.Version = ""
		table.Wicket = -1
		table.DuckPenalty = 3
		table.WicketHauls = []pointstable.Milestone{{Threshold: 4, Bonus: 8}, {Threshold: 3, Bonus: 4}}
		table.ViceCaptain = 0

		Convey("Then validation reports an invalid table", func() {
			err := table.Validate()
			So(errors.Is(err, pointstable.ErrInvalidTable), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "version")
			So(err.Error(), ShouldContainSubstring, "wicket must not be negative")
			So(err.Error(), ShouldContainSubstring, "duck_penalty")
			So(err.Error(), ShouldContainSubstring, "strictly increasing")
			So(err.Error(), ShouldContainSubstring, "multipliers")
		})
	})

	Convey("Given a table with fine-grained multipliers", t, func() {
		table := pointstable.Default()

		Convey("When a multiplier has two decimal places", func() {
			table.ViceCaptain = 1.25

			Convey("Then the table is valid", func() {
				So(table.Validate(), ShouldBeNil)
			})
		})

		Convey("When a multiplier has three decimal places", func() {
			table.ViceCaptain = 1.125
			err := table.Validate()

			Convey("Then validation rejects it", func() {
				So(errors.Is(err, pointstable.ErrInvalidTable), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "vice_captain multiplier 1.125")
			})
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given a YAML points table", t, func() {
		ctx := context.Background()

		Convey("When it overrides a few values", func() {
			path := writeTable(t, `
version: v2
wicket: 30
batting_milestones:
  - threshold: 50
    bonus: 10
duck_exempt_roles: [bowler, all-rounder]
economy:
  ceiling: 6.5
`)
			table, err := pointstable.Load(ctx, path)

			Convey("Then the overrides apply and the rest keeps defaults", func() {
				So(err, ShouldBeNil)
				So(table.Version, ShouldEqual, "v2")
				So(table.Wicket, ShouldEqual, 30)
				So(table.BattingMilestones, ShouldResemble, []pointstable.Milestone{{Threshold: 50, Bonus: 10}})
				So(table.DuckExemptRoles, ShouldResemble, []model.Role{model.Bowler, model.AllRounder})
				So(table.Economy.Ceiling, ShouldEqual, 6.5)
				So(table.Economy.MinOvers, ShouldEqual, 2)
				So(table.Catch, ShouldEqual, 8)
			})
		})

		Convey("When the file yields an invalid table", func() {
			path := writeTable(t, "captain: 0\n")
			_, err := pointstable.Load(ctx, path)

			Convey("Then loading fails validation", func() {
				So(errors.Is(err, pointstable.ErrInvalidTable), ShouldBeTrue)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := pointstable.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))

			Convey("Then loading fails", func() {
				So(errors.Is(err, pointstable.ErrLoadTable), ShouldBeTrue)
			})
		})
	})
}
