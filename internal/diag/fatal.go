package diag

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Malformed wraps err with context (for example, which IR module was
// being loaded) and aborts the run. It reports an IR module that cannot
// be read, and goes through glog.Fatal rather than diag.Format.
func Malformed(context string, err error) {
	glog.Fatal(errors.Wrap(err, context))
}

// Malformedf is Malformed for a formatted context with no underlying
// error.
func Malformedf(format string, args ...interface{}) {
	glog.Fatalf(format, args...)
}

// Soundness logs a soundness warning and lets the run continue, e.g. for
// an empty or missing error-only list or an empty specs file.
func Soundness(format string, args ...interface{}) {
	glog.Warningf(format, args...)
}
