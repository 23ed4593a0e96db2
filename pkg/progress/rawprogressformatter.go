package progress

import "fmt"

const streamNewline = "\r\n"

type rawProgressFormatter struct{}

func (sf *rawProgressFormatter) formatStatus(id, format string, a ...interface{}) []byte {
	return []byte(fmt.Sprintf(format, a...) + streamNewline)
}

// formatProgress renders "action current/total units", overwriting the
// current line.
func (sf *rawProgressFormatter) formatProgress(id, action string, current, total int64, units string) []byte {
	counts := fmt.Sprintf("%d", current)
	if total > 0 {
		counts += fmt.Sprintf("/%d", total)
	}
	if units != "" {
		counts += " " + units
	}
	return []byte(action + " " + counts + "\r")
}
