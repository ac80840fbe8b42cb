package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/kastenhq/iotester/pkg/aggregate"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// TextSink streams a human readable block per job.
type TextSink struct {
	w      io.Writer
	closer io.Closer
}

// NewTextSink writes to w. The sink does not close w.
func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

func (s *TextSink) Name() string { return TypeText }

func (s *TextSink) Write(rec *aggregate.Record) error {
	block := fmt.Sprintf("Job: %s\n%s", rec.Name, rec.Raw.WorkloadStdout)
	if rec.Raw.WorkloadStderr != "" {
		block += "\nstderr:\n" + rec.Raw.WorkloadStderr
	}
	block += "\n---\n"
	_, err := io.WriteString(s.w, block)
	return errors.Wrap(err, "Failed to write text output")
}

func (s *TextSink) Close() error { return closeOwned(s.closer) }

// JSONSink writes one object per record, indented unless compact.
type JSONSink struct {
	w       io.Writer
	closer  io.Closer
	compact bool
}

// NewJSONSink writes to w. The sink does not close w.
func NewJSONSink(w io.Writer, compact bool) *JSONSink {
	return &JSONSink{w: w, compact: compact}
}

func (s *JSONSink) Name() string { return TypeJSON }

func (s *JSONSink) Write(rec *aggregate.Record) error {
	var (
		data []byte
		err  error
	)
	if s.compact {
		data, err = json.Marshal(rec)
	} else {
		data, err = json.MarshalIndent(rec, "", "  ")
	}
	if err != nil {
		return errors.Wrapf(err, "Failed to encode record %s", rec.Name)
	}
	_, err = s.w.Write(append(data, '\n'))
	return errors.Wrap(err, "Failed to write json output")
}

func (s *JSONSink) Close() error { return closeOwned(s.closer) }

// CSVSink writes a header row followed by one row per record.
type CSVSink struct {
	w      *csv.Writer
	closer io.Closer
	fields []string
	header bool
}

// NewCSVSink writes to w using fields as columns. With no fields the first
// record's field order is used.
func NewCSVSink(w io.Writer, fields []string) *CSVSink {
	return &CSVSink{w: csv.NewWriter(w), fields: fields}
}

func (s *CSVSink) Name() string { return TypeCSV }

func (s *CSVSink) Write(rec *aggregate.Record) error {
	if !s.header {
		if len(s.fields) == 0 {
			s.fields = rec.Keys()
		}
		if err := s.w.Write(s.fields); err != nil {
			return errors.Wrap(err, "Failed to write csv header")
		}
		s.header = true
	}
	if err := s.w.Write(rec.Values(s.fields)); err != nil {
		return errors.Wrap(err, "Failed to write csv row")
	}
	s.w.Flush()
	return errors.Wrap(s.w.Error(), "Failed to flush csv output")
}

func (s *CSVSink) Close() error {
	s.w.Flush()
	return multierr.Combine(s.w.Error(), closeOwned(s.closer))
}

// TableSink collects rows and renders an aligned table on Close.
type TableSink struct {
	w      io.Writer
	closer io.Closer
	fields []string
	rows   [][]string
}

// NewTableSink renders to w using fields as columns. With no fields the
// first record's field order is used.
func NewTableSink(w io.Writer, fields []string) *TableSink {
	return &TableSink{w: w, fields: fields}
}

func (s *TableSink) Name() string { return TypeTable }

func (s *TableSink) Write(rec *aggregate.Record) error {
	if len(s.fields) == 0 {
		s.fields = rec.Keys()
	}
	s.rows = append(s.rows, rec.Values(s.fields))
	return nil
}

func (s *TableSink) Close() error {
	if len(s.rows) > 0 {
		table := tablewriter.NewWriter(s.w)
		table.SetAutoFormatHeaders(false)
		table.SetAutoWrapText(false)
		table.SetHeader(s.fields)
		table.AppendBulk(s.rows)
		table.Render()
		s.rows = nil
	}
	return closeOwned(s.closer)
}
