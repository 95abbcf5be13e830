package datagen

import (
	"context"
	"crypto/rand"
	"encoding/csv"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/okian/rake/pkg/logger"
)

const (
	randomFloatDivisor = 1000000
	dirPermission      = 0o750
	hoursPerDay        = 24
	daysPerWeek        = 7
)

// randomFloat returns a random float64 in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// randomIn returns a random float64 in [lo, hi).
func randomIn(lo, hi float64) float64 {
	return lo + randomFloat()*(hi-lo)
}

// randomTimestamp returns a random time in [start, end).
func randomTimestamp(start, end time.Time) time.Time {
	if !end.After(start) {
		return start
	}
	return start.Add(time.Duration(randomFloat() * float64(end.Sub(start))))
}

// Generate writes players.csv, transactions.csv, bets.csv and sessions.csv
// into cfg.OutDir. Column names are chosen so the service's keyword
// resolution lands on the intended columns.
func Generate(ctx context.Context, cfg Config) error {
	cfg = cfg.withDefaults()

	log := logger.Get()
	log.Info(ctx, "generating synthetic dataset",
		logger.String("outDir", cfg.OutDir),
		logger.Int("players", cfg.Players),
		logger.Int("days", cfg.Days),
	)

	if err := os.MkdirAll(cfg.OutDir, dirPermission); err != nil {
		return fmt.Errorf("create output dir %s: %w", cfg.OutDir, err)
	}

	windowStart := cfg.End.AddDate(0, 0, -cfg.Days)

	players := make([]playerProfile, cfg.Players)
	for i := range players {
		a := pickArchetype(randomFloat())
		signupOffset := randomFloat() * float64(cfg.Days) * 0.8
		players[i] = playerProfile{
			id:        uuid.New().String(),
			archetype: a,
			signup:    windowStart.Add(time.Duration(signupOffset * hoursPerDay * float64(time.Hour))),
			country:   countries[int(randomFloat()*float64(len(countries)))%len(countries)],
		}
	}

	if err := writePlayers(ctx, cfg, players); err != nil {
		return err
	}
	if err := writeTransactions(ctx, cfg, players); err != nil {
		return err
	}
	if err := writeBets(ctx, cfg, players); err != nil {
		return err
	}
	if err := writeSessions(ctx, cfg, players); err != nil {
		return err
	}

	log.Info(ctx, "synthetic dataset written", logger.String("outDir", cfg.OutDir))
	return nil
}

type playerProfile struct {
	id        string
	archetype archetype
	signup    time.Time
	country   string
}

var countries = []string{"DE", "GB", "SE", "FI", "NL", "MT", "BR", "JP", "CA"}

var experimentArms = []string{"control", "bonus_a", "bonus_b"}

// activeOn decides whether a player shows up on a given day.
func (p playerProfile) activeOn(day time.Time) bool {
	if day.Before(p.signup) {
		return false
	}
	return randomFloat() < p.archetype.activeDays
}

func writePlayers(ctx context.Context, cfg Config, players []playerProfile) error {
	rows := [][]string{{"player_id", "signup_date", "country", "segment"}}
	for _, p := range players {
		rows = append(rows, []string{
			p.id,
			p.signup.Format("2006-01-02"),
			p.country,
			p.archetype.name,
		})
	}
	return writeCSV(ctx, filepath.Join(cfg.OutDir, "players.csv"), rows)
}

func writeTransactions(ctx context.Context, cfg Config, players []playerProfile) error {
	rows := [][]string{{"tx_id", "player_id", "amount", "tx_time", "tx_type", "experiment_id"}}
	for _, p := range players {
		arm := experimentArms[int(randomFloat()*float64(len(experimentArms)))%len(experimentArms)]
		deposits := int(p.archetype.depositsPerWeek * float64(cfg.Days) / daysPerWeek)
		if deposits < 1 {
			deposits = 1
		}
		for i := 0; i < deposits; i++ {
			ts := randomTimestamp(p.signup, cfg.End)
			amount := randomIn(p.archetype.stakeMin*5, p.archetype.stakeMax*5)
			txType := "deposit"
			// Roughly a quarter of transactions are withdrawals.
			if randomFloat() < 0.25 {
				txType = "withdrawal"
				amount = -amount
			}
			rows = append(rows, []string{
				uuid.New().String(),
				p.id,
				strconv.FormatFloat(amount, 'f', 2, 64),
				ts.Format(time.RFC3339),
				txType,
				arm,
			})
		}
	}
	return writeCSV(ctx, filepath.Join(cfg.OutDir, "transactions.csv"), rows)
}

func writeBets(ctx context.Context, cfg Config, players []playerProfile) error {
	games := []string{"roulette", "blackjack", "slots", "poker", "baccarat"}
	rows := [][]string{{"ticket_id", "player_id", "game", "stake_amount", "win_amount", "bet_time"}}
	for _, p := range players {
		for day := 0; day < cfg.Days; day++ {
			date := cfg.End.AddDate(0, 0, -day)
			if !p.activeOn(date) {
				continue
			}
			// Poisson-ish: vary the daily count around the archetype mean.
			count := int(p.archetype.betsPerDay * randomIn(0.5, 1.5))
			for i := 0; i < count; i++ {
				stake := randomIn(p.archetype.stakeMin, p.archetype.stakeMax)
				// House edge: expected return just below stake.
				win := 0.0
				if randomFloat() < 0.45 {
					win = stake * randomIn(1.0, 2.1)
				}
				ts := date.Add(-time.Duration(randomFloat() * hoursPerDay * float64(time.Hour)))
				rows = append(rows, []string{
					uuid.New().String(),
					p.id,
					games[int(randomFloat()*float64(len(games)))%len(games)],
					strconv.FormatFloat(stake, 'f', 2, 64),
					strconv.FormatFloat(win-stake, 'f', 2, 64),
					ts.Format(time.RFC3339),
				})
			}
		}
	}
	return writeCSV(ctx, filepath.Join(cfg.OutDir, "bets.csv"), rows)
}

func writeSessions(ctx context.Context, cfg Config, players []playerProfile) error {
	rows := [][]string{{"session_id", "player_id", "login_time", "duration_minutes"}}
	for _, p := range players {
		for day := 0; day < cfg.Days; day++ {
			date := cfg.End.AddDate(0, 0, -day)
			if !p.activeOn(date) {
				continue
			}
			count := int(p.archetype.sessionsPerDay*randomIn(0.5, 1.5)) + 1
			for i := 0; i < count; i++ {
				ts := date.Add(-time.Duration(randomFloat() * hoursPerDay * float64(time.Hour)))
				rows = append(rows, []string{
					uuid.New().String(),
					p.id,
					ts.Format(time.RFC3339),
					strconv.Itoa(int(randomIn(2, 180))),
				})
			}
		}
	}
	return writeCSV(ctx, filepath.Join(cfg.OutDir, "sessions.csv"), rows)
}

func writeCSV(ctx context.Context, path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}

	logger.Get().Debug(ctx, "wrote dataset file",
		logger.String("path", path),
		logger.Int("rows", len(rows)-1),
	)
	return nil
}
