package progress

import (
	"io"

	"github.com/pcj/mobyprogress"
)

// NewProgressOutput returns an output that writes plain progress lines to
// out.  A final newline is written for a progress with LastUpdate set.
func NewProgressOutput(out io.Writer) mobyprogress.Output {
	return &progressOutput{sf: &rawProgressFormatter{}, out: out, newLines: true}
}

type formatProgress interface {
	formatStatus(id, format string, a ...interface{}) []byte
	formatProgress(id, action string, current, total int64, units string) []byte
}

type progressOutput struct {
	sf       formatProgress
	out      io.Writer
	newLines bool
}

// WriteProgress implements mobyprogress.Output.
func (out *progressOutput) WriteProgress(prog mobyprogress.Progress) error {
	var formatted []byte
	if prog.Message != "" {
		formatted = out.sf.formatStatus(prog.ID, prog.Message)
	} else {
		units := prog.Units
		if prog.HideCounts {
			units = ""
		}
		formatted = out.sf.formatProgress(prog.ID, prog.Action, prog.Current, prog.Total, units)
	}
	_, err := out.out.Write(formatted)
	if err != nil {
		return err
	}

	if out.newLines && prog.LastUpdate {
		_, err = out.out.Write(out.sf.formatStatus("", ""))
		return err
	}

	return nil
}
