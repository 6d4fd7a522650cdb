package importer

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/emitrack/emitrack/internal/model"
)

// Row is one installment line read from a bank export.
type Row struct {
	Line      int
	Date      string // normalized to model.DateFormat
	Amount    decimal.Decimal
	Principal decimal.NullDecimal
	Interest  decimal.NullDecimal
	Balance   decimal.NullDecimal
}

// Parser converts an export file into rows.
type Parser interface {
	Parse(r io.Reader) ([]Row, error)
	Format() string
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
}

// FileInfo describes a CSV file in the import directory.
type FileInfo struct {
	Name string
	Path string
	Size int64
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// DefaultRegistry returns a registry with the built-in parsers, reading
// columns named by cols.
func DefaultRegistry(cols ColumnMap) *Registry {
	r := NewRegistry()
	r.Register(NewScheduleParser(cols))
	return r
}

// Installments turns rows into installment records of one grouping. Rows whose
// amount is not positive are dropped and counted.
func Installments(owner, groupKey string, category model.Category, rows []Row) (recs []model.InstallmentRecord, dropped int) {
	for _, row := range rows {
		if !row.Amount.IsPositive() {
			dropped++
			continue
		}
		recs = append(recs, model.InstallmentRecord{
			OwnerID:            owner,
			GroupKey:           groupKey,
			Date:               row.Date,
			Amount:             row.Amount,
			Category:           category,
			Balance:            row.Balance,
			PrincipalComponent: row.Principal,
			InterestComponent:  row.Interest,
			Source:             model.SourceImport,
		})
	}
	return recs, dropped
}

// importDir is the subdirectory for import CSVs.
const importDir = "import"

// processedDir is the subdirectory for processed CSVs.
const processedDir = "import/processed"

// Scan returns CSV files in <root>/import/.
func Scan(root string) ([]FileInfo, error) {
	dir := filepath.Join(root, importDir)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading import dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".csv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name: e.Name(),
			Path: filepath.Join(dir, e.Name()),
			Size: info.Size(),
		})
	}
	return files, nil
}

// GroupKeyFromName derives a grouping from a file name:
// "HDFC Home Loan.csv" becomes "HDFC Home Loan".
func GroupKeyFromName(name string) string {
	base := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return strings.TrimSpace(strings.NewReplacer("_", " ").Replace(base))
}

// MarkProcessed moves a file from import/ to import/processed/.
func MarkProcessed(root, fileName string) error {
	src := filepath.Join(root, importDir, fileName)
	dstDir := filepath.Join(root, processedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}
