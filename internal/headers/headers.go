package headers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"upload-mapper/internal/common"
)

var (
	// ErrMissingHeader is returned when the file has no header row.
	ErrMissingHeader = errors.New("missing header row")
	// ErrInvalidEncoding is returned when the header row is not valid text in the expected encoding.
	ErrInvalidEncoding = errors.New("invalid text encoding")
	// ErrUnsupportedFormat is returned for file extensions ReadFile does not know.
	ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")
)

type options struct {
	delimiter rune
	encoding  string
	sheet     string
}

// Option configures how headers are read.
type Option func(*options)

// WithDelimiter sets the CSV field delimiter (default is comma, tab for .tsv).
func WithDelimiter(d rune) Option {
	return func(o *options) {
		o.delimiter = d
	}
}

// WithEncoding decodes CSV input from a named encoding such as "windows-1252"
// or "iso-8859-1".
func WithEncoding(name string) Option {
	return func(o *options) {
		o.encoding = name
	}
}

// WithSheet reads an XLSX sheet other than the first.
func WithSheet(name string) Option {
	return func(o *options) {
		o.sheet = name
	}
}

func newOptions(opts []Option) *options {
	o := &options{delimiter: ','}
	for _, opt := range opts {
		opt(o)
	}

	return o
}

// ReadFile reads the headers of a .csv, .tsv, .txt or .xlsx file.
func ReadFile(path string, opts ...Option) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".csv", ".tsv", ".txt", ".xlsx":
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	switch ext {
	case ".xlsx":
		return ReadXLSX(f, opts...)
	case ".tsv":
		return ReadCSV(f, append([]Option{WithDelimiter('\t')}, opts...)...)
	default:
		return ReadCSV(f, opts...)
	}
}

// ReadCSV reads the first record of delimited text.
func ReadCSV(r io.Reader, opts ...Option) ([]string, error) {
	o := newOptions(opts)

	var decoded io.Reader

	if o.encoding != "" {
		enc, err := htmlindex.Get(o.encoding)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidEncoding, o.encoding, err)
		}

		decoded = transform.NewReader(r, enc.NewDecoder())
	} else {
		decoded = transform.NewReader(r, unicode.BOMOverride(transform.Nop))
	}

	reader := csv.NewReader(decoded)
	reader.Comma = o.delimiter
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	record, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	for _, h := range record {
		if !utf8.ValidString(h) {
			return nil, ErrInvalidEncoding
		}
	}

	return clean(record)
}

// ReadXLSX reads the first row of a workbook sheet.
func ReadXLSX(r io.Reader, opts ...Option) ([]string, error) {
	o := newOptions(opts)

	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := o.sheet
	if sheet == "" {
		first, ok := common.First(f.GetSheetList())
		if !ok {
			return nil, ErrMissingHeader
		}

		sheet = first
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Error(); err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}

		return nil, ErrMissingHeader
	}

	record, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read header of sheet %q: %w", sheet, err)
	}

	return clean(record)
}

// clean trims every header and drops trailing empty cells.
func clean(record []string) ([]string, error) {
	out := make([]string, len(record))
	for i, h := range record {
		out[i] = strings.TrimSpace(h)
	}

	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}

	if common.IsEmpty(out) {
		return nil, ErrMissingHeader
	}

	return out, nil
}
