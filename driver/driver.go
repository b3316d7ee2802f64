// Package driver wraps the gerber interpreter in a synchronous and
// cancellable surface: a thin convenience layer over gerber.Interpreter
// for callers that want to run a parse on a background goroutine,
// coalesce progress into a UI-friendly trickle, and cancel cooperatively.
package driver

import (
	"context"
	"os"
	"sync"

	"github.com/rs/zerolog"

	gerber "gerberflow"
)

// Driver is bound to one input over its lifetime; it is not reusable
// across inputs. ParseBackground may be started only once, while Header
// and Parse each run a fresh interpreter and may be called repeatedly.
type Driver struct {
	data   []byte
	logger zerolog.Logger
	digest bool

	mu       sync.Mutex
	cancelCh chan struct{}
	started  bool
}

// Option configures a Driver at construction time.
type Option func(*Driver)

// WithLogger installs a structured logger, threaded down into the
// interpreter.
func WithLogger(l zerolog.Logger) Option { return func(d *Driver) { d.logger = l } }

// WithDigest enables the MD5 accumulator on the underlying interpreter.
func WithDigest(enabled bool) Option { return func(d *Driver) { d.digest = enabled } }

// Open binds a Driver to the given input bytes.
func Open(data []byte, opts ...Option) *Driver {
	d := &Driver{data: data, logger: zerolog.Nop()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// OpenFile reads path and binds a Driver to its contents. A read failure
// surfaces as a KindIO GerberFormatError.
func OpenFile(path string, opts ...Option) (*Driver, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gerber.WrapIOError(err, path)
	}
	return Open(data, opts...), nil
}

// Header synchronously reads the file prologue — commands up to the first
// D-code — and returns the file-attribute dictionary and coordinate
// units. It runs on a fresh interpreter, so a later Parse or
// ParseBackground re-reads the input from the start.
func (d *Driver) Header() (*gerber.Header, error) {
	ip := gerber.New(d.data, gerber.WithLogger(d.logger))
	return ip.ParseHeader()
}

// Parse runs the interpreter synchronously to completion on the calling
// goroutine.
func (d *Driver) Parse() (*gerber.Result, error) {
	ip := gerber.New(d.data, gerber.WithLogger(d.logger), gerber.WithDigest(d.digest))
	return ip.Parse()
}

// ParseBackground starts the parse on a new goroutine and returns
// immediately. progress, if non-nil, receives coalesced fraction-of-bytes-
// consumed updates through a size-1 buffered channel: a slow consumer only
// ever observes the latest value, never a backlog. The returned channel
// receives exactly one result (or error) and is then closed. Cancel (or
// ctx's own cancellation) stops the parse at the next command boundary.
func (d *Driver) ParseBackground(ctx context.Context, progress chan float64) <-chan Outcome {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		out := make(chan Outcome, 1)
		out <- Outcome{Err: ErrAlreadyStarted}
		close(out)
		return out
	}
	d.started = true
	d.cancelCh = make(chan struct{})
	cancelCh := d.cancelCh
	d.mu.Unlock()

	out := make(chan Outcome, 1)

	go func() {
		defer close(out)

		done := make(chan struct{})
		relay := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				close(relay)
			case <-cancelCh:
				close(relay)
			case <-done:
			}
		}()

		onProgress := func(frac float64) {
			if progress == nil {
				return
			}
			select {
			case progress <- frac:
			default:
				select {
				case <-progress:
				default:
				}
				select {
				case progress <- frac:
				default:
				}
			}
		}

		ip := gerber.New(d.data,
			gerber.WithLogger(d.logger),
			gerber.WithDigest(d.digest),
			gerber.WithCancel(relay),
			gerber.WithProgress(onProgress),
		)
		result, err := ip.Parse()
		close(done)
		out <- Outcome{Result: result, Err: err}
	}()

	return out
}

// Cancel requests cooperative cancellation of an in-flight
// ParseBackground call. A no-op if the parse has not
// started or has already finished.
func (d *Driver) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancelCh == nil {
		return
	}
	select {
	case <-d.cancelCh:
	default:
		close(d.cancelCh)
	}
}

// Outcome is the single value delivered on ParseBackground's result
// channel.
type Outcome struct {
	Result *gerber.Result
	Err    error
}

// ErrAlreadyStarted is returned by ParseBackground when called more than
// once on the same Driver.
var ErrAlreadyStarted = errAlreadyStarted{}

type errAlreadyStarted struct{}

func (errAlreadyStarted) Error() string { return "driver: parse already started on this Driver" }
