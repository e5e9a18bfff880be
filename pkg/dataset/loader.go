// Package dataset reads training files into a domain.Dataset.
package dataset

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/aretw0/regtrain/pkg/domain"
	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

const utf8BOM = "\ufeff"

// Load opens the CSV file at path and returns its (feature, label) rows.
// The header is normalized and validated before any cell is parsed.
func Load(path string) (*domain.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open dataset %s", path)
	}
	defer f.Close()

	ds, err := Read(f)
	if err != nil {
		return nil, err
	}
	ds.Source = path
	return ds, nil
}

// row is one data line; cells stay strings so parse errors can name the line.
type row struct {
	Feature string `csv:"feature"`
	Label   string `csv:"label"`
}

// records replays already-read CSV records to gocsv.
type records [][]string

func (r *records) Read() ([]string, error) {
	if len(*r) == 0 {
		return nil, io.EOF
	}
	rec := (*r)[0]
	*r = (*r)[1:]
	return rec, nil
}

func (r *records) ReadAll() ([][]string, error) {
	all := *r
	*r = nil
	return all, nil
}

// Read parses CSV content from r. Columns other than feature and label are ignored.
func Read(r io.Reader) (*domain.Dataset, error) {
	raw, err := gocsv.LazyCSVReader(r).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse dataset")
	}
	if len(raw) == 0 {
		return nil, errors.WithStack(domain.NewValidationError(domain.RequiredColumns(), nil))
	}

	header := raw[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	columns := Normalize(header)
	if err := Validate(columns); err != nil {
		return nil, errors.WithStack(err)
	}
	if len(raw) == 1 {
		return nil, errors.WithStack(domain.ErrEmptyDataset)
	}

	// Decode against the normalized header so " Feature " binds to the feature tag.
	in := records(append([][]string{columns}, raw[1:]...))
	var rows []row
	if err := gocsv.UnmarshalCSV(&in, &rows); err != nil {
		return nil, errors.Wrap(err, "failed to decode dataset rows")
	}

	ds := &domain.Dataset{
		Columns:  columns,
		Features: make([]float64, 0, len(rows)),
		Labels:   make([]float64, 0, len(rows)),
	}
	for i, rw := range rows {
		// Line numbers are 1-based and the header occupies line 1.
		line := i + 2
		x, err := cell(rw.Feature, domain.FeatureColumn, line)
		if err != nil {
			return nil, err
		}
		y, err := cell(rw.Label, domain.LabelColumn, line)
		if err != nil {
			return nil, err
		}
		ds.Features = append(ds.Features, x)
		ds.Labels = append(ds.Labels, y)
	}

	return ds, nil
}

// Normalize trims and lower-cases every column name.
func Normalize(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = strings.ToLower(strings.TrimSpace(c))
	}
	return out
}

// Validate checks that normalized columns are a superset of the required columns.
// It returns a *domain.ValidationError listing required and actual columns otherwise.
func Validate(columns []string) error {
	for _, req := range domain.RequiredColumns() {
		if indexOf(columns, req) < 0 {
			return domain.NewValidationError(domain.RequiredColumns(), columns)
		}
	}
	return nil
}

func indexOf(columns []string, name string) int {
	for i, c := range columns {
		if c == name {
			return i
		}
	}
	return -1
}

func cell(value, column string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, errors.Wrapf(err, "line %d: column %q is not numeric", line, column)
	}
	return v, nil
}
