package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/rake/internal/domain/engine"
	"github.com/okian/rake/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func buildTable(name string, columns []string, rows [][]string) *table.Table {
	b := table.NewBuilder(name, columns)
	for _, row := range rows {
		b.AppendRow(row)
	}
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}

func date(s string) time.Time {
	ts, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return ts
}

func TestLeaderboard(t *testing.T) {
	Convey("Given a bets table", t, func() {
		bets := buildTable("bets",
			[]string{"player_id", "stake_amount"},
			[][]string{
				{"A", "100"},
				{"A", "50"},
				{"B", "200"},
				{"C", "30"},
			})

		Convey("When ranking by summed stake", func() {
			entries, err := engine.Leaderboard(bets, "player_id", "stake_amount", 2, engine.AggSum)

			Convey("Then scores are grouped sums, sorted descending and truncated", func() {
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 2)
				So(entries[0], ShouldResemble, engine.Entry{Rank: 1, PlayerID: "B", Score: 200})
				So(entries[1], ShouldResemble, engine.Entry{Rank: 2, PlayerID: "A", Score: 150})
			})
		})

		Convey("When ranking by mean stake", func() {
			entries, err := engine.Leaderboard(bets, "player_id", "stake_amount", 0, engine.AggMean)

			Convey("Then per-group means drive the order", func() {
				So(err, ShouldBeNil)
				So(entries[0].PlayerID, ShouldEqual, "B")
				So(entries[0].Score, ShouldEqual, 200)
				So(entries[1].PlayerID, ShouldEqual, "A")
				So(entries[1].Score, ShouldEqual, 75)
				So(entries[2].PlayerID, ShouldEqual, "C")
			})
		})

		Convey("When two players tie", func() {
			tied := buildTable("bets",
				[]string{"player_id", "stake_amount"},
				[][]string{
					{"X", "100"},
					{"Y", "100"},
					{"Z", "500"},
				})

			entries, err := engine.Leaderboard(tied, "player_id", "stake_amount", 0, engine.AggSum)

			Convey("Then first appearance breaks the tie", func() {
				So(err, ShouldBeNil)
				So(entries[1].PlayerID, ShouldEqual, "X")
				So(entries[2].PlayerID, ShouldEqual, "Y")
			})
		})

		Convey("When the metric column is unresolved", func() {
			_, err := engine.Leaderboard(bets, "player_id", "", 5, engine.AggSum)

			So(errors.Is(err, engine.ErrMissingColumn), ShouldBeTrue)
		})

		Convey("When the metric column is not numeric", func() {
			_, err := engine.Leaderboard(bets, "player_id", "player_id", 5, engine.AggSum)

			So(errors.Is(err, engine.ErrMissingColumn), ShouldBeTrue)
		})

		Convey("When every row has been filtered away", func() {
			empty := bets.Select(nil)

			entries, err := engine.Leaderboard(empty, "player_id", "stake_amount", 5, engine.AggSum)

			Convey("Then the result is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(entries, ShouldBeEmpty)
			})
		})
	})
}

func TestWindowedFilter(t *testing.T) {
	Convey("Given a table with a timestamp column", t, func() {
		events := buildTable("bets",
			[]string{"player_id", "bet_time"},
			[][]string{
				{"A", "2024-01-10T00:00:00Z"},
				{"B", "2024-01-05T00:00:00Z"},
				{"C", "2023-12-01T00:00:00Z"},
			})

		Convey("When filtering to a trailing 7-day window", func() {
			windowed := engine.WindowedFilter(events, "bet_time", 7)

			Convey("Then only rows within [max-7d, max] survive", func() {
				So(windowed.NumRows(), ShouldEqual, 2)
			})

			Convey("And filtering again with the same window changes nothing", func() {
				again := engine.WindowedFilter(windowed, "bet_time", 7)
				So(again.NumRows(), ShouldEqual, windowed.NumRows())
			})
		})

		Convey("When the boundary row sits exactly at max-Nd", func() {
			windowed := engine.WindowedFilter(events, "bet_time", 5)

			Convey("Then the window is inclusive on both ends", func() {
				So(windowed.NumRows(), ShouldEqual, 2)
			})
		})

		Convey("When the timestamp column is empty or absent", func() {
			So(engine.WindowedFilter(events, "", 7), ShouldEqual, events)
			So(engine.WindowedFilter(events, "nope", 7), ShouldEqual, events)
		})

		Convey("When the window is non-positive", func() {
			So(engine.WindowedFilter(events, "bet_time", 0), ShouldEqual, events)
		})
	})
}

func TestDailyActiveCount(t *testing.T) {
	Convey("Given session events across two days", t, func() {
		sessions := buildTable("sessions",
			[]string{"player_id", "login_time"},
			[][]string{
				{"A", "2024-01-01T10:00:00Z"},
				{"B", "2024-01-01T11:00:00Z"},
				{"A", "2024-01-01T20:00:00Z"},
				{"A", "2024-01-02T09:00:00Z"},
			})

		Convey("When counting daily active players", func() {
			dau, err := engine.DailyActiveCount(sessions, "login_time", "player_id")

			Convey("Then each date counts distinct players, ascending", func() {
				So(err, ShouldBeNil)
				So(len(dau), ShouldEqual, 2)
				So(dau[0].Date, ShouldEqual, date("2024-01-01"))
				So(dau[0].Count, ShouldEqual, 2)
				So(dau[1].Date, ShouldEqual, date("2024-01-02"))
				So(dau[1].Count, ShouldEqual, 1)
			})
		})

		Convey("When a day has no activity", func() {
			gappy := buildTable("sessions",
				[]string{"player_id", "login_time"},
				[][]string{
					{"A", "2024-01-01T10:00:00Z"},
					{"A", "2024-01-03T10:00:00Z"},
				})

			dau, err := engine.DailyActiveCount(gappy, "login_time", "player_id")

			Convey("Then the gap day is omitted, not zero-filled", func() {
				So(err, ShouldBeNil)
				So(len(dau), ShouldEqual, 2)
				So(dau[1].Date, ShouldEqual, date("2024-01-03"))
			})
		})

		Convey("When the player column is unresolved", func() {
			_, err := engine.DailyActiveCount(sessions, "login_time", "")

			So(errors.Is(err, engine.ErrMissingColumn), ShouldBeTrue)
		})
	})
}

func TestDailyEventCount(t *testing.T) {
	Convey("Given bet events", t, func() {
		bets := buildTable("bets",
			[]string{"player_id", "bet_time"},
			[][]string{
				{"A", "2024-01-01T10:00:00Z"},
				{"A", "2024-01-01T11:00:00Z"},
				{"B", "2024-01-02T10:00:00Z"},
			})

		Convey("When counting rows per date", func() {
			series, err := engine.DailyEventCount(bets, "bet_time")

			Convey("Then repeated players still count as separate events", func() {
				So(err, ShouldBeNil)
				So(len(series), ShouldEqual, 2)
				So(series[0].Count, ShouldEqual, 2)
				So(series[1].Count, ShouldEqual, 1)
			})
		})
	})
}

func TestCohortRetention(t *testing.T) {
	Convey("Given activity spanning two cohorts", t, func() {
		sessions := buildTable("sessions",
			[]string{"player_id", "login_time"},
			[][]string{
				{"A", "2024-01-01T10:00:00Z"},
				{"B", "2024-01-01T12:00:00Z"},
				{"A", "2024-01-03T09:00:00Z"},
				{"C", "2024-01-02T08:00:00Z"},
			})

		Convey("When computing cohort retention", func() {
			m, err := engine.CohortRetention(sessions, "login_time", "player_id")
			So(err, ShouldBeNil)

			Convey("Then the day-zero cell equals the cohort size", func() {
				So(m.At(date("2024-01-01"), 0), ShouldEqual, 2)
				So(m.At(date("2024-01-02"), 0), ShouldEqual, 1)
			})

			Convey("And returning players land on their day offset", func() {
				So(m.At(date("2024-01-01"), 2), ShouldEqual, 1)
			})

			Convey("And absent cells read as zero", func() {
				So(m.At(date("2024-01-01"), 1), ShouldEqual, 0)
				So(m.At(date("2024-02-01"), 0), ShouldEqual, 0)
			})

			Convey("And cells are sorted by cohort then day with no negative offsets", func() {
				cells := m.Cells()
				So(len(cells), ShouldEqual, 3)
				for i, c := range cells {
					So(c.Day, ShouldBeGreaterThanOrEqualTo, 0)
					So(c.Players, ShouldBeGreaterThan, 0)
					if i > 0 {
						So(cells[i-1].FirstDate.After(c.FirstDate), ShouldBeFalse)
					}
				}
			})
		})
	})
}

func TestQuantileOutliers(t *testing.T) {
	Convey("Given groups with known frequencies", t, func() {
		// Counts per group: a=1, b=2, c=3.
		rows := [][]string{{"a", "5"}}
		rows = append(rows, [][]string{{"b", "5"}, {"b", "5"}}...)
		rows = append(rows, [][]string{{"c", "5"}, {"c", "5"}, {"c", "5"}}...)
		bets := buildTable("bets", []string{"player_id", "stake_amount"}, rows)

		Convey("When thresholding frequency at the median", func() {
			out, err := engine.QuantileOutliers(bets, "player_id", "", engine.ByFrequency, 0.5)

			Convey("Then only values strictly above the threshold are flagged", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 1)
				So(out[0].GroupID, ShouldEqual, "c")
				So(out[0].Value, ShouldEqual, 3)
				So(out[0].Threshold, ShouldEqual, 2)
			})
		})

		Convey("When thresholding the per-group mean stake", func() {
			stakes := buildTable("bets",
				[]string{"player_id", "stake_amount"},
				[][]string{
					{"a", "10"},
					{"b", "10"},
					{"c", "10"},
					{"w", "1000"},
				})

			out, err := engine.QuantileOutliers(stakes, "player_id", "stake_amount", engine.ByMean, 0.5)

			Convey("Then the quantile is over per-group means, not raw rows", func() {
				So(err, ShouldBeNil)
				So(len(out), ShouldEqual, 1)
				So(out[0].GroupID, ShouldEqual, "w")
				So(out[0].Value, ShouldEqual, 1000)
			})
		})

		Convey("When the quantile is out of range", func() {
			_, err := engine.QuantileOutliers(bets, "player_id", "", engine.ByFrequency, 1)

			So(err, ShouldNotBeNil)
		})

		Convey("When ByMean is asked without a metric column", func() {
			_, err := engine.QuantileOutliers(bets, "player_id", "", engine.ByMean, 0.5)

			So(errors.Is(err, engine.ErrMissingColumn), ShouldBeTrue)
		})

		Convey("When the table is empty", func() {
			empty := buildTable("bets", []string{"player_id", "stake_amount"}, nil)

			out, err := engine.QuantileOutliers(empty, "player_id", "", engine.ByFrequency, 0.5)

			So(err, ShouldBeNil)
			So(out, ShouldBeEmpty)
		})
	})
}

func TestRFM(t *testing.T) {
	Convey("Given four players with distinct recency, frequency and monetary", t, func() {
		tx := buildTable("transactions",
			[]string{"player_id", "amount", "tx_time"},
			[][]string{
				{"A", "10", "2024-01-02T00:00:00Z"},
				{"B", "20", "2024-01-03T00:00:00Z"},
				{"B", "20", "2024-01-04T00:00:00Z"},
				{"C", "30", "2024-01-04T00:00:00Z"},
				{"C", "30", "2024-01-05T00:00:00Z"},
				{"C", "30", "2024-01-06T00:00:00Z"},
				{"D", "40", "2024-01-05T00:00:00Z"},
				{"D", "40", "2024-01-06T00:00:00Z"},
				{"D", "40", "2024-01-07T00:00:00Z"},
				{"D", "40", "2024-01-08T00:00:00Z"},
			})

		Convey("When segmenting", func() {
			records, err := engine.RFM(tx, "player_id", "amount", "tx_time")
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 4)

			byPlayer := map[string]engine.RFMRecord{}
			for _, r := range records {
				byPlayer[r.PlayerID] = r
			}

			Convey("Then recency counts days from the snapshot after the last event", func() {
				So(byPlayer["D"].Recency, ShouldEqual, 1)
				So(byPlayer["A"].Recency, ShouldEqual, 7)
			})

			Convey("And the most recent, frequent, valuable player scores 444", func() {
				So(byPlayer["D"].Composite, ShouldEqual, 444)
			})

			Convey("And the least engaged player scores 111", func() {
				So(byPlayer["A"].Composite, ShouldEqual, 111)
			})

			Convey("And every digit is in 1..4", func() {
				for _, r := range records {
					So(r.RScore, ShouldBeBetweenOrEqual, 1, 4)
					So(r.FScore, ShouldBeBetweenOrEqual, 1, 4)
					So(r.MScore, ShouldBeBetweenOrEqual, 1, 4)
					So(r.Composite, ShouldEqual, r.RScore*100+r.FScore*10+r.MScore)
				}
			})
		})

		Convey("When a dimension has fewer than 4 distinct values", func() {
			flat := buildTable("transactions",
				[]string{"player_id", "amount", "tx_time"},
				[][]string{
					{"A", "10", "2024-01-01T00:00:00Z"},
					{"B", "20", "2024-01-02T00:00:00Z"},
					{"C", "30", "2024-01-03T00:00:00Z"},
					{"D", "40", "2024-01-04T00:00:00Z"},
				})

			// Frequencies are all 1, so quartile binning is undefined.
			_, err := engine.RFM(flat, "player_id", "amount", "tx_time")

			So(errors.Is(err, engine.ErrInsufficientData), ShouldBeTrue)
		})

		Convey("When no row has a usable timestamp", func() {
			empty := buildTable("transactions",
				[]string{"player_id", "amount", "tx_time"},
				[][]string{{"A", "10", ""}})

			_, err := engine.RFM(empty, "player_id", "amount", "tx_time")

			So(errors.Is(err, engine.ErrEmptyInput), ShouldBeTrue)
		})
	})
}

func TestExperimentSummary(t *testing.T) {
	Convey("Given events tagged with experiment arms", t, func() {
		tx := buildTable("transactions",
			[]string{"player_id", "experiment_id"},
			[][]string{
				{"A", "control"},
				{"A", "control"},
				{"B", "control"},
				{"C", "bonus_a"},
				{"D", ""},
			})

		Convey("When summarizing", func() {
			groups, err := engine.ExperimentSummary(tx, "experiment_id", "player_id")

			Convey("Then arms are sorted by id with null assignments skipped", func() {
				So(err, ShouldBeNil)
				So(len(groups), ShouldEqual, 2)
				So(groups[0], ShouldResemble, engine.ExperimentGroup{ExperimentID: "bonus_a", UniquePlayers: 1, TotalEvents: 1})
				So(groups[1], ShouldResemble, engine.ExperimentGroup{ExperimentID: "control", UniquePlayers: 2, TotalEvents: 3})
			})
		})

		Convey("When the experiment column is unresolved", func() {
			_, err := engine.ExperimentSummary(tx, "", "player_id")

			So(errors.Is(err, engine.ErrMissingColumn), ShouldBeTrue)
		})
	})
}
