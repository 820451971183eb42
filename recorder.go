package carousel

import "time"

// Recorder receives rendering telemetry. Implementations must be safe for
// concurrent use. internal/metrics provides a Prometheus implementation.
type Recorder interface {
	BrowserLaunched(engine string, err error)
	TabOpened()
	TabClosed()
	PageRendered(attempts int, d time.Duration, err error)
	BatchRendered(pages int, d time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) BrowserLaunched(string, error)           {}
func (nopRecorder) TabOpened()                              {}
func (nopRecorder) TabClosed()                              {}
func (nopRecorder) PageRendered(int, time.Duration, error)  {}
func (nopRecorder) BatchRendered(int, time.Duration, error) {}
