package txg

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kastenhq/iotester/pkg/common"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// DefaultPool is the pool watched when none is given
const DefaultPool = "tank"

// clearScreen moves the cursor home and clears the terminal
const clearScreen = "\033[H\033[2J"

// Columns of the txgs kstat, in file order.
var Columns = []string{"txg", "birth", "state", "ndirty", "nread", "nwritten", "reads", "writes", "otime", "qtime", "wtime", "stime"}

// Header is Columns plus the derived bandwidth.
var Header = append(append([]string{}, Columns...), "BW")

var (
	mib         = decimal.NewFromInt(1024 * 1024)
	thousand    = decimal.NewFromInt(1000)
	million     = decimal.NewFromInt(1000 * 1000)
	byteColumns = map[string]bool{"ndirty": true, "nread": true, "nwritten": true}
	usColumns   = map[string]bool{"qtime": true, "wtime": true}
	msColumns   = map[string]bool{"otime": true, "stime": true}
)

// KstatPath returns the txgs kstat file of pool.
func KstatPath(pool string) string {
	return fmt.Sprintf("/proc/spl/kstat/zfs/%s/txgs", pool)
}

// Read returns the last n transaction group rows of the kstat in r. The
// kstat preamble and column header are skipped.
func Read(r io.Reader, n int) ([][]string, error) {
	var rows [][]string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		f := strings.Fields(scanner.Text())
		if len(f) < len(Columns) || f[0] == Columns[0] {
			continue
		}
		if _, err := strconv.ParseUint(f[0], 10, 64); err != nil {
			continue
		}
		rows = append(rows, f[:len(Columns)])
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "Failed to read txg kstat")
	}
	if n > 0 && len(rows) > n {
		rows = rows[len(rows)-n:]
	}
	return rows, nil
}

// Format converts raw rows to human units and appends the write bandwidth
// in MB/s derived from nwritten and stime.
func Format(rows [][]string) ([][]string, error) {
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		formatted := make([]string, 0, len(Header))
		var nwritten, stime decimal.Decimal
		for col, name := range Columns {
			val := row[col]
			if !byteColumns[name] && !usColumns[name] && !msColumns[name] {
				formatted = append(formatted, val)
				continue
			}
			d, err := decimal.NewFromString(val)
			if err != nil {
				return nil, common.ParseError(errors.Wrapf(err, "txg %s column %s", row[0], name))
			}
			switch {
			case byteColumns[name]:
				formatted = append(formatted, d.Div(mib).Round(0).String()+"MB")
			case usColumns[name]:
				formatted = append(formatted, d.Div(thousand).Round(0).String()+"us")
			default:
				formatted = append(formatted, d.Div(million).Round(0).String()+"ms")
			}
			switch name {
			case "nwritten":
				nwritten = d
			case "stime":
				stime = d
			}
		}
		bw := decimal.Zero
		if stime.IsPositive() {
			bw = nwritten.Div(stime).Mul(thousand)
		}
		formatted = append(formatted, bw.StringFixed(1))
		out = append(out, formatted)
	}
	return out, nil
}

// Render writes rows as a table.
func Render(w io.Writer, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(Header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.AppendBulk(rows)
	table.Render()
}

// Viewer periodically renders the newest txgs of a pool.
type Viewer struct {
	Path     string
	Lines    int
	Interval time.Duration
	Out      io.Writer
}

// Once renders a single snapshot.
func (v *Viewer) Once() error {
	f, err := os.Open(v.Path)
	if err != nil {
		return common.ConfigError(errors.Wrapf(err, "Unable to open %s", v.Path))
	}
	defer f.Close()
	rows, err := Read(f, v.Lines)
	if err != nil {
		return err
	}
	formatted, err := Format(rows)
	if err != nil {
		return err
	}
	Render(v.Out, formatted)
	return nil
}

// Watch clears the screen and renders a snapshot every Interval until ctx
// is done.
func (v *Viewer) Watch(ctx context.Context) error {
	for {
		fmt.Fprint(v.Out, clearScreen)
		if err := v.Once(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(v.Interval):
		}
	}
}
