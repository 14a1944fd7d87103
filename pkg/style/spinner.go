package style

import (
	"io"
	"strconv"

	"github.com/pterm/pterm"
)

// Spinner shows progress for a long network operation. A nil Spinner, as
// returned for non-interactive output, ignores every call.
type Spinner struct {
	printer *pterm.SpinnerPrinter
}

// StartSpinner starts a spinner writing to w with the given text. It returns
// nil when interactive is false.
func StartSpinner(w io.Writer, interactive bool, text string) *Spinner {
	if !interactive {
		return nil
	}
	printer, err := pterm.DefaultSpinner.
		WithRemoveWhenDone(true).
		WithWriter(w).
		Start(text)
	if err != nil {
		return nil
	}
	return &Spinner{printer: printer}
}

// Update changes the spinner text.
func (s *Spinner) Update(text string) {
	if s == nil {
		return
	}
	s.printer.UpdateText(text)
}

// Stop removes the spinner.
func (s *Spinner) Stop() {
	if s == nil {
		return
	}
	_ = s.printer.Stop()
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
