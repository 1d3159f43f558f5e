package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/streakr/internal/store"
)

type jsonExport struct {
	ExportedAt string              `json:"exported_at"`
	Count      int                 `json:"count"`
	Streak     store.Streak        `json:"streak"`
	Days       []store.DailyPoints `json:"days"`
}

// ToJSON writes the day records and the current streak as one document.
func ToJSON(days []store.DailyPoints, streak store.Streak, path string) error {
	export := jsonExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(days),
		Streak:     streak,
		Days:       days,
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
