package ports

// ProgressReporter receives coarse progress events from long-running
// pipeline stages (matrix building, solving) so a caller can surface
// progress without the stage depending on a concrete logger or UI.
type ProgressReporter interface {
	// Stage announces the start of a named pipeline stage.
	Stage(name string)

	// Progress reports completed/total units of work within the current stage.
	Progress(completed, total int)

	// Done announces the end of the current stage, with a short status note.
	Done(note string)
}

// NoopReporter discards every event. It is the default when no reporter is
// configured.
type NoopReporter struct{}

func (NoopReporter) Stage(string)      {}
func (NoopReporter) Progress(int, int) {}
func (NoopReporter) Done(string)       {}
