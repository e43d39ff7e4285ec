// ABOUTME: Garmin weight/body composition CSV importer.
// ABOUTME: Handles Garmin's multiline export: quoted date rows followed by data rows.
package importers

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/transforms"
)

type garminWeight struct {
	f       *os.File
	scanner *bufio.Scanner
	date    string // current date row, normalized
}

func newGarminWeight(f *os.File) Importer {
	return &garminWeight{f: f}
}

func (g *garminWeight) Source() string { return "garmin_weight" }
func (g *garminWeight) Close() error   { return g.f.Close() }

func (g *garminWeight) Next() (*models.Record, error) {
	if g.scanner == nil {
		g.scanner = bufio.NewScanner(stripBOM(g.f))
		g.scanner.Scan() // header row
	}

	for g.scanner.Scan() {
		line := strings.TrimSpace(g.scanner.Text())
		if line == "" {
			continue
		}

		// Date rows look like: '" Nov 25, 2025",'
		if strings.HasPrefix(line, `"`) {
			if end := strings.Index(line[1:], `"`); end >= 0 {
				if date, ok := transforms.ParseDate(line[1 : end+1]); ok {
					g.date = date
				} else {
					g.date = ""
				}
			}
			continue
		}

		// Data rows: time,weight,change,bmi,body_fat,muscle,bone,water
		parts := strings.Split(strings.TrimRight(line, ","), ",")
		if g.date == "" || len(parts) < 8 {
			continue
		}

		weight, ok := parseSuffixed(parts[1], "lbs")
		if !ok {
			continue
		}

		timeOfDay, _ := transforms.ParseTime12h(parts[0])
		rec := models.NewBodyMeasurement("garmin", g.date, timeOfDay)
		rec.SetNum("weight_lbs", weight)
		if v, ok := parseSuffixed(parts[2], "lbs"); ok {
			rec.SetNum("weight_change_lbs", v)
		}
		if v, ok := transforms.ParseNumber(parts[3]); ok {
			rec.SetNum("bmi", v)
		}
		if v, ok := parseSuffixed(parts[4], "%"); ok {
			rec.SetNum("body_fat_pct", v)
		}
		if v, ok := parseSuffixed(parts[5], "lbs"); ok {
			rec.SetNum("muscle_mass_lbs", v)
		}
		if v, ok := parseSuffixed(parts[6], "lbs"); ok {
			rec.SetNum("bone_mass_lbs", v)
		}
		if v, ok := parseSuffixed(parts[7], "%"); ok {
			rec.SetNum("body_water_pct", v)
		}
		return rec, nil
	}

	if err := g.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// parseSuffixed parses values like "157.4 lbs" or "22.4 %".
func parseSuffixed(s, suffix string) (float64, bool) {
	s = strings.TrimSpace(strings.ReplaceAll(s, suffix, ""))
	if s == "" || s == "--" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
