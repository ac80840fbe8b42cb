package output

import (
	"io"
	"os"
	"strings"

	"github.com/kastenhq/iotester/pkg/aggregate"
	"github.com/kastenhq/iotester/pkg/common"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Destination types accepted by New.
const (
	TypeText  = "text"
	TypeJSON  = "json"
	TypeCSV   = "csv"
	TypeTable = "table"
)

//go:generate go run github.com/golang/mock/mockgen -destination=mocks/mock_sink.go -package=mocks . Sink
type Sink interface {
	Name() string
	Write(rec *aggregate.Record) error
	// Close flushes buffered output and releases any file the sink owns.
	Close() error
}

// Options select and configure the destinations built by New.
type Options struct {
	// Types is a comma separated list of stdout|plain|text, json, csv, table.
	Types string
	// Per destination files. Empty means Stdout.
	TextFile  string
	JSONFile  string
	CSVFile   string
	TableFile string
	// OutputFile is used by the json destination when JSONFile is empty.
	OutputFile  string
	CompactJSON bool
	// Fields fixes the csv and table columns. Defaults to the first
	// record's field order.
	Fields []string
	Stdout io.Writer
}

// ParseTypes splits a destination selector into canonical type names.
// Unknown names are returned separately.
func ParseTypes(selector string) (types []string, unknown []string) {
	seen := map[string]bool{}
	for _, t := range strings.Split(selector, ",") {
		t = strings.ToLower(strings.TrimSpace(t))
		switch t {
		case "":
			continue
		case "stdout", "plain", TypeText:
			t = TypeText
		case TypeJSON, TypeCSV, TypeTable:
		default:
			unknown = append(unknown, t)
			continue
		}
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types, unknown
}

// New builds the sinks named in opts. Unknown types are skipped with a
// warning and an empty selection falls back to text on stdout. A file that
// cannot be opened is a ConfigError.
func New(opts Options) (Sink, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	types, unknown := ParseTypes(opts.Types)
	for _, t := range unknown {
		log.Warnf("Unknown output type %s, skipping", t)
	}
	if len(types) == 0 {
		log.Warn("No valid output destination selected, defaulting to stdout")
		types = []string{TypeText}
	}

	var sinks []Sink
	for _, t := range types {
		s, err := newSink(t, opts)
		if err != nil {
			for _, opened := range sinks {
				_ = opened.Close()
			}
			return nil, err
		}
		sinks = append(sinks, s)
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return NewComposite(sinks...), nil
}

func newSink(t string, opts Options) (Sink, error) {
	path := map[string]string{
		TypeText:  opts.TextFile,
		TypeJSON:  opts.JSONFile,
		TypeCSV:   opts.CSVFile,
		TypeTable: opts.TableFile,
	}[t]
	if t == TypeJSON && path == "" {
		path = opts.OutputFile
	}
	w, closer, err := open(path, opts.Stdout)
	if err != nil {
		return nil, err
	}
	switch t {
	case TypeJSON:
		s := NewJSONSink(w, opts.CompactJSON)
		s.closer = closer
		return s, nil
	case TypeCSV:
		s := NewCSVSink(w, opts.Fields)
		s.closer = closer
		return s, nil
	case TypeTable:
		s := NewTableSink(w, opts.Fields)
		s.closer = closer
		return s, nil
	default:
		s := NewTextSink(w)
		s.closer = closer
		return s, nil
	}
}

// open returns the writer for path, or fallback without a closer when path
// is empty.
func open(path string, fallback io.Writer) (io.Writer, io.Closer, error) {
	if path == "" {
		return fallback, nil, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, common.ConfigError(errors.Wrapf(err, "Unable to open output file %s", path))
	}
	return f, f, nil
}

func closeOwned(c io.Closer) error {
	if c == nil {
		return nil
	}
	return c.Close()
}

// Composite fans records out to several sinks. A failing sink is logged
// and does not stop delivery to the others.
type Composite struct {
	sinks []Sink
}

// NewComposite returns a Composite over sinks.
func NewComposite(sinks ...Sink) *Composite {
	return &Composite{sinks: sinks}
}

func (c *Composite) Name() string {
	names := make([]string, len(c.sinks))
	for i, s := range c.sinks {
		names[i] = s.Name()
	}
	return strings.Join(names, ",")
}

// Sinks returns the wrapped sinks.
func (c *Composite) Sinks() []Sink {
	return c.sinks
}

func (c *Composite) Write(rec *aggregate.Record) error {
	for _, s := range c.sinks {
		if err := s.Write(rec); err != nil {
			log.WithError(common.SinkError(err)).WithField("sink", s.Name()).Error("Output destination failed")
		}
	}
	return nil
}

func (c *Composite) Close() error {
	var err error
	for _, s := range c.sinks {
		if cerr := s.Close(); cerr != nil {
			err = multierr.Append(err, common.SinkError(errors.Wrapf(cerr, "Closing %s", s.Name())))
		}
	}
	return err
}
