// ABOUTME: Shared CSV plumbing: header-keyed row access over encoding/csv.
// ABOUTME: Strips the UTF-8 BOM some exporters prepend.
package importers

import (
	"bufio"
	"encoding/csv"
	"io"
	"strings"
)

// dictReader reads CSV rows keyed by the header line, in the manner of
// Python's csv.DictReader. Header lookup is case-insensitive.
type dictReader struct {
	r      *csv.Reader
	header map[string]int
}

func newDictReader(r io.Reader, delimiter rune) (*dictReader, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.Comma = delimiter
	cr.FieldsPerRecord = -1

	head, err := cr.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(head))
	for i, name := range head {
		header[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return &dictReader{r: cr, header: header}, nil
}

// next returns the next data row, or io.EOF.
func (d *dictReader) next() (row, error) {
	fields, err := d.r.Read()
	if err != nil {
		return row{}, err
	}
	return row{header: d.header, fields: fields}, nil
}

// has reports whether any of the header aliases is present in the file.
func (d *dictReader) has(aliases ...string) bool {
	for _, a := range aliases {
		if _, ok := d.header[strings.ToLower(a)]; ok {
			return true
		}
	}
	return false
}

type row struct {
	header map[string]int
	fields []string
}

// get returns the trimmed cell under the first matching header alias.
func (r row) get(aliases ...string) string {
	for _, a := range aliases {
		i, ok := r.header[strings.ToLower(a)]
		if !ok || i >= len(r.fields) {
			continue
		}
		if v := strings.TrimSpace(r.fields[i]); v != "" {
			return v
		}
	}
	return ""
}

// stripBOM drops a leading UTF-8 byte order mark.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if b, err := br.Peek(3); err == nil && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = br.Discard(3)
	}
	return br
}
