package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sadopc/streakr/internal/store"
)

// ToCSV writes one row per scored day.
func ToCSV(days []store.DailyPoints, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"Date", "Earned", "Bonus", "Total", "Reached", "Sources"}); err != nil {
		return err
	}

	for _, d := range days {
		row := []string{
			d.Date,
			strconv.Itoa(d.EarnedPoints),
			strconv.Itoa(d.BonusApplied),
			strconv.Itoa(d.TotalPoints),
			strconv.FormatBool(d.ReachedGoal),
			formatSources(d.Breakdown),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// formatSources renders a breakdown as "name:+10; other:-1.5".
func formatSources(rows []store.Breakdown) string {
	parts := make([]string, 0, len(rows))
	for _, b := range rows {
		parts = append(parts, fmt.Sprintf("%s:%s", b.SourceName, formatPoints(b.Points)))
	}
	return strings.Join(parts, "; ")
}

func formatPoints(p float64) string {
	s := strconv.FormatFloat(p, 'f', -1, 64)
	if p > 0 {
		return "+" + s
	}
	return s
}
