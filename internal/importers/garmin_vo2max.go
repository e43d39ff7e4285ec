// ABOUTME: Garmin VO2 Max CSV importer.
// ABOUTME: Two header lines, then date, activity type, value rows.
package importers

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/transforms"
)

type garminVO2Max struct {
	f       *os.File
	scanner *bufio.Scanner
}

func newGarminVO2Max(f *os.File) Importer {
	return &garminVO2Max{f: f}
}

func (g *garminVO2Max) Source() string { return "garmin_vo2max" }
func (g *garminVO2Max) Close() error   { return g.f.Close() }

func (g *garminVO2Max) Next() (*models.Record, error) {
	if g.scanner == nil {
		g.scanner = bufio.NewScanner(stripBOM(g.f))
		g.scanner.Scan()
		g.scanner.Scan() // two header lines
	}

	for g.scanner.Scan() {
		line := strings.TrimSpace(g.scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")

		// Month-name dates like "Nov 20, 2025" carry a comma and land in
		// two fields; rejoin until the date parses.
		date, ok := transforms.ParseDate(strings.Trim(parts[0], `"`))
		if !ok && len(parts) > 1 {
			date, ok = transforms.ParseDate(strings.Trim(parts[0]+","+parts[1], `"`))
			if ok {
				parts = parts[1:]
			}
		}
		if !ok || len(parts) < 3 {
			continue
		}
		value, ok := transforms.ParseNumber(parts[2])
		if !ok {
			continue
		}

		rec := models.NewVO2Max("garmin", date, strings.TrimSpace(parts[1]))
		rec.SetNum("vo2max_value", value)
		return rec, nil
	}

	if err := g.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}
