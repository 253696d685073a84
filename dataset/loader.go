package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/YuminosukeSato/houseprice/pkg/errors"
	"github.com/YuminosukeSato/houseprice/pkg/log"
)

// Row is a raw record keyed by column name, as accepted at inference time.
type Row map[string]string

// Load reads a housing CSV file.
//
// Example:
//
//	ds, err := dataset.Load("Data/housing.csv")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(ds.Len())
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewFileNotFoundError(path, err)
		}
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	start := time.Now()
	ds, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}

	log.GetLoggerWithName("dataset").Info("Dataset loaded",
		log.OperationKey, log.OperationLoad,
		log.PathKey, path,
		log.SamplesKey, ds.Len(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ds, nil
}

// Read parses comma separated housing data with a header row. Columns are
// matched by header name, so their order in the file is free. Empty
// numeric feature cells load as NaN; every other malformed cell is a
// ParseError.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return &Dataset{}, nil
	}
	if err != nil {
		return nil, csvError(err)
	}
	idx, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	var (
		records []Record
		missing int
	)
	for {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		if len(fields) != len(header) {
			return nil, errors.NewParseError(line,
				"expected "+strconv.Itoa(len(header))+" fields, got "+strconv.Itoa(len(fields)))
		}

		rec, err := parseFields(func(col string) string { return fields[idx[col]] }, true)
		if err != nil {
			var fe *fieldError
			if errors.As(err, &fe) {
				return nil, errors.NewFieldParseError(line, fe.column, fe.value, fe.reason)
			}
			return nil, err
		}
		missing += rec.MissingCount()
		records = append(records, rec)
	}

	if missing > 0 {
		errors.Warn(errors.NewDataConversionWarning("empty string", "NaN",
			strconv.Itoa(missing)+" empty numeric cells loaded as missing values"))
	}
	return &Dataset{records: records}, nil
}

// ParseRow converts a raw row into a Record. Every feature column must be
// present; the target column is required only when withTarget is set.
// A missing key fails with a SchemaMismatchError listing all absent columns.
func ParseRow(row Row, withTarget bool) (Record, error) {
	var missing []string
	for _, col := range Schema {
		if col == ColMedianHouseValue && !withTarget {
			continue
		}
		if _, ok := row[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return Record{}, errors.NewSchemaMismatchError(missing)
	}

	rec, err := parseFields(func(col string) string { return row[col] }, withTarget)
	if err != nil {
		var fe *fieldError
		if errors.As(err, &fe) {
			return Record{}, errors.NewValidationError(fe.column, fe.reason, fe.value)
		}
		return Record{}, err
	}
	return rec, nil
}

// headerIndex maps each schema column to its position in the header.
func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(name)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if _, dup := idx[name]; dup {
			return nil, errors.NewFieldParseError(1, name, name, "duplicate column in header")
		}
		idx[name] = i
	}

	var missing []string
	for _, col := range Schema {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, errors.NewParseError(1, "header is missing columns: "+strings.Join(missing, ", "))
	}
	return idx, nil
}

// fieldError describes a bad cell before the caller attaches its position.
type fieldError struct {
	column string
	value  string
	reason string
}

func (e *fieldError) Error() string {
	return e.column + ": " + e.reason
}

func parseFields(get func(col string) string, withTarget bool) (Record, error) {
	var rec Record
	for i, col := range NumericColumns {
		v, err := parseNumeric(col, get(col), true)
		if err != nil {
			return Record{}, err
		}
		rec.setNumeric(i, v)
	}
	rec.OceanProximity = strings.TrimSpace(get(ColOceanProximity))

	if withTarget {
		v, err := parseNumeric(ColMedianHouseValue, get(ColMedianHouseValue), false)
		if err != nil {
			return Record{}, err
		}
		rec.MedianHouseValue = v
	}
	return rec, nil
}

func parseNumeric(col, raw string, allowMissing bool) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		if allowMissing {
			return math.NaN(), nil
		}
		return 0, &fieldError{column: col, value: raw, reason: "value is required"}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &fieldError{column: col, value: raw, reason: "not a number"}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &fieldError{column: col, value: raw, reason: "value must be finite"}
	}
	return v, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return errors.NewParseError(pe.Line, pe.Err.Error())
	}
	return errors.Wrap(err, "read csv")
}
