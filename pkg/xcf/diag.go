package xcf

import "github.com/sirupsen/logrus"

// diagnostics is the textual diagnostic stream required by spec.md §7,
// kept separate from the binary output stream. It is a trimmed
// descendant of pkg/elog's Logger interface: the logrus core without the
// progress-bar/terminal-color surface a library encoder has no use for.
type diagnostics struct {
	log *logrus.Logger
}

func newDiagnostics() *diagnostics {
	return &diagnostics{log: logrus.New()}
}

func (d *diagnostics) errorf(format string, args ...interface{}) {
	d.log.Errorf(format, args...)
}

func (d *diagnostics) warnf(format string, args ...interface{}) {
	d.log.Warnf(format, args...)
}

func (d *diagnostics) debugf(format string, args ...interface{}) {
	d.log.Debugf(format, args...)
}
