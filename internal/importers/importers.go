// ABOUTME: Record normalizers: turn source export files into normalized records.
// ABOUTME: Each importer is a lazy, finite, non-restartable record source.
package importers

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/harperreed/healthimport/internal/engine"
)

// Importer is a record source backed by an open file. The caller owns
// the file lifetime and must Close when the import finishes.
type Importer interface {
	engine.RecordSource
	io.Closer
}

var builders = map[string]func(f *os.File) Importer{
	"garmin_activities": newGarminActivities,
	"garmin_weight":     newGarminWeight,
	"garmin_vo2max":     newGarminVO2Max,
	"six_week":          newSixWeek,
	"macrofactor":       newMacroFactor,
	"apple_healthkit":   newAppleHealth,
}

// Sources returns the supported source names, sorted.
func Sources() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open creates an importer for a source name over a file on disk.
func Open(source, path string) (Importer, error) {
	build, ok := builders[source]
	if !ok {
		return nil, fmt.Errorf("unknown source: %s (supported: %v)", source, Sources())
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return build(f), nil
}
