package ad

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Diagnostics receives non-fatal reports from a differentiation run.
// Fatal conditions are returned as errors, not reported here.
type Diagnostics interface {
	// Warnf reports a non-fatal condition. Execution continues with the
	// documented default behavior.
	Warnf(format string, args ...any)
}

// slogDiagnostics logs warnings through log/slog, tagging every record
// with the id of the run that produced it.
type slogDiagnostics struct {
	log   *slog.Logger
	runID string
}

// newRunDiagnostics builds the default per-run sink on the given logger.
func newRunDiagnostics(log *slog.Logger) *slogDiagnostics {
	return &slogDiagnostics{log: log, runID: uuid.NewString()}
}

func (d *slogDiagnostics) Warnf(format string, args ...any) {
	d.log.Warn(fmt.Sprintf(format, args...), slog.String("run_id", d.runID))
}

// discardDiagnostics drops all reports.
type discardDiagnostics struct{}

func (discardDiagnostics) Warnf(format string, args ...any) {}

// Discard is a Diagnostics sink that drops everything.
var Discard Diagnostics = discardDiagnostics{}
