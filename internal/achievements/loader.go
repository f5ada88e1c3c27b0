package achievements

import (
	"encoding/json"
	"log/slog"
	"os"
)

// Load reads the achievement catalog from a JSON file. The loader fails
// open: any read or decode problem yields an empty catalog, so missing
// achievements are only ever withheld, never incorrectly granted.
// Entries with an unknown condition type are skipped so that a catalog
// shipped for a newer build does not break evaluation.
func Load(path string, logger *slog.Logger) []Achievement {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Error("achievement catalog not readable", "path", path, "error", err)
		return nil
	}

	var all []Achievement
	if err := json.Unmarshal(data, &all); err != nil {
		logger.Error("achievement catalog not decodable", "path", path, "error", err)
		return nil
	}

	catalog := make([]Achievement, 0, len(all))
	for _, a := range all {
		if !a.ConditionType.Valid() {
			logger.Warn("skipping achievement with unknown condition type",
				"id", a.ID, "condition_type", string(a.ConditionType))
			continue
		}
		catalog = append(catalog, a)
	}

	logger.Info("achievement catalog loaded", "path", path, "count", len(catalog))
	return catalog
}
