// ABOUTME: Apple Health export.xml importer for resting heart rate.
// ABOUTME: Streams with xml.Decoder; export files routinely exceed 500MB.
package importers

import (
	"encoding/xml"
	"os"
	"strings"

	"github.com/harperreed/healthimport/internal/models"
	"github.com/harperreed/healthimport/internal/transforms"
)

// HealthKit type identifier for resting heart rate records.
const restingHRType = "HKQuantityTypeIdentifierRestingHeartRate"

type appleHealth struct {
	f   *os.File
	dec *xml.Decoder
}

func newAppleHealth(f *os.File) Importer {
	return &appleHealth{f: f}
}

func (a *appleHealth) Source() string { return "apple_healthkit" }
func (a *appleHealth) Close() error   { return a.f.Close() }

func (a *appleHealth) Next() (*models.Record, error) {
	if a.dec == nil {
		a.dec = xml.NewDecoder(a.f)
	}

	for {
		tok, err := a.dec.Token()
		if err != nil {
			return nil, err // io.EOF at end of document
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Record" {
			continue
		}

		attrs := make(map[string]string, len(start.Attr))
		for _, attr := range start.Attr {
			attrs[attr.Name.Local] = attr.Value
		}
		// Skip the element body without materializing it.
		if err := a.dec.Skip(); err != nil {
			return nil, err
		}

		if attrs["type"] != restingHRType {
			continue
		}

		date, ok := healthKitDate(attrs["startDate"])
		if !ok {
			continue
		}
		hr, ok := transforms.ParseNumber(attrs["value"])
		if !ok {
			continue
		}

		rec := models.NewRestingHR("apple_healthkit", date)
		rec.SetNum("resting_hr", float64(int(hr)))
		rec.SetTextPtr("source_name", ptr(attrs["sourceName"]))
		return rec, nil
	}
}

// healthKitDate extracts the date from a HealthKit timestamp like
// "2025-11-24 08:00:00 -0800".
func healthKitDate(s string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(s), " ", 2)
	if len(parts) < 2 {
		return "", false
	}
	return transforms.ParseDate(parts[0])
}
