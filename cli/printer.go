package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/leoorshansky/KalmanFilterExample/estimate"
	"github.com/leoorshansky/KalmanFilterExample/literal"
	"github.com/leoorshansky/KalmanFilterExample/store"
)

const (
	formatPlain = "plain"
	formatTable = "table"
)

// Printer writes filter steps.
type Printer interface {
	// Print writes step s
	Print(s store.Step) error
	// Flush writes anything buffered
	Flush() error
}

// NewPrinter returns a Printer writing steps to w in the given format.
func NewPrinter(format string, w io.Writer) (Printer, error) {
	switch format {
	case formatPlain, "":
		return &plainPrinter{w: w}, nil
	case formatTable:
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"STEP", "MEASUREMENT", "ESTIMATE", "STDDEV", "SKIPPED"})
		return &tablePrinter{t: t}, nil
	}

	return nil, fmt.Errorf("unknown output format: %q", format)
}

// plainPrinter prints one state literal per line.
type plainPrinter struct {
	w io.Writer
}

func (p *plainPrinter) Print(s store.Step) error {
	_, err := fmt.Fprintln(p.w, literal.Format(s.State))
	return err
}

func (p *plainPrinter) Flush() error { return nil }

// tablePrinter renders all steps as a table on Flush.
type tablePrinter struct {
	t table.Writer
}

func (p *tablePrinter) Print(s store.Step) error {
	est, err := estimate.NewBaseWithCov(s.State, s.Cov)
	if err != nil {
		return err
	}

	std := make([]string, 0, s.State.Len())
	for _, v := range est.StdDev() {
		std = append(std, fmt.Sprintf("%.4g", v))
	}

	skipped := ""
	if s.Skipped {
		skipped = "yes"
	}

	p.t.AppendRow(table.Row{s.Index, literal.Format(s.Measurement), literal.Format(s.State), strings.Join(std, " "), skipped})

	return nil
}

func (p *tablePrinter) Flush() error {
	p.t.Render()
	return nil
}
