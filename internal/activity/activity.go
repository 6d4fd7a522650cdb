// Package activity records every committed write in logs/activity.csv under
// the data directory.
package activity

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry is one row in the activity log.
type Entry struct {
	Timestamp  time.Time
	Owner      string
	Action     string // e.g. "emi.schedule", "lend.settle"
	Collection string
	Count      int // records written or removed
	Details    string
	CommitHash string
}

// Header is the CSV header for activity.csv.
const Header = "timestamp,owner,action,collection,count,details,commit_hash"

const (
	numFields     = 7
	logDir        = "logs"
	logFile       = "activity.csv"
	colTimestamp  = 0
	colOwner      = 1
	colAction     = 2
	colCollection = 3
	colCount      = 4
	colDetails    = 5
	colCommitHash = 6
)

// Path returns the activity log path under root.
func Path(root string) string {
	return filepath.Join(root, logDir, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.UTC().Format(time.RFC3339)
	row[colOwner] = e.Owner
	row[colAction] = e.Action
	row[colCollection] = e.Collection
	row[colCount] = strconv.Itoa(e.Count)
	row[colDetails] = e.Details
	row[colCommitHash] = e.CommitHash
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	count, err := strconv.Atoi(record[colCount])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing count %q: %w", record[colCount], err)
	}
	return Entry{
		Timestamp:  ts,
		Owner:      record[colOwner],
		Action:     record[colAction],
		Collection: record[colCollection],
		Count:      count,
		Details:    record[colDetails],
		CommitHash: record[colCommitHash],
	}, nil
}

// Append writes entries to the activity log, creating the file and header if
// needed.
func Append(root string, entries ...Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := os.MkdirAll(filepath.Join(root, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(root)
	_, statErr := os.Stat(path)
	needsHeader := errors.Is(statErr, fs.ErrNotExist)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns every entry of the activity log, or nil when there is none.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(Path(root))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading activity log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
