// Package run provides process lifecycle helpers for background
// runnables: the serial pump, the wake source, the terminal server.
package run

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/golang/glog"
)

// Runnable is a background worker driven by a context.
type Runnable interface {
	Run(context.Context) error
}

// Func is the func form of Runnable.
type Func func(context.Context) error

// Run implements Runnable.
func (f Func) Run(ctx context.Context) error { return f(ctx) }

// AggregatedError joins the exit errors of a Group's runnables. A
// lone error passes through unchanged; more than one gets a header
// line and one error per line.
type AggregatedError struct {
	Errors []error
}

// Error implements error.
func (e *AggregatedError) Error() string {
	switch len(e.Errors) {
	case 0:
		return ""
	case 1:
		return e.Errors[0].Error()
	}
	var b strings.Builder
	b.WriteString("Multiple errors:")
	for _, err := range e.Errors {
		b.WriteByte('\n')
		b.WriteString(err.Error())
	}
	return b.String()
}

// Add appends non-nil errors.
func (e *AggregatedError) Add(errs ...error) *AggregatedError {
	for _, err := range errs {
		if err != nil {
			e.Errors = append(e.Errors, err)
		}
	}
	return e
}

// Aggregate returns the aggregated error, or nil when none happened.
func (e *AggregatedError) Aggregate() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// Group runs runnables together: when any of them stops, the rest are
// canceled, and Wait aggregates the errors. Cancellations do not count
// as errors.
type Group struct {
	ctx    context.Context
	cancel func()
	errCh  chan error
	count  int
}

// NewGroup creates a Group under the given context.
func NewGroup(ctx context.Context) *Group {
	ctx, cancel := context.WithCancel(ctx)
	return &Group{
		ctx:    ctx,
		cancel: cancel,
		errCh:  make(chan error, 1),
	}
}

// Go spawns runnables.
func (g *Group) Go(runnables ...Runnable) *Group {
	for _, r := range runnables {
		name := strconv.Itoa(g.count)
		g.count++
		go func(r Runnable, name string) {
			glog.V(4).Infof("runnable[%s] started", name)
			err := r.Run(g.ctx)
			glog.V(4).Infof("runnable[%s] stopped: %v", name, err)
			g.cancel()
			g.errCh <- err
		}(r, name)
	}
	return g
}

// Wait blocks until every spawned runnable has stopped.
func (g *Group) Wait() error {
	defer g.cancel()
	var errs AggregatedError
	for i := 0; i < g.count; i++ {
		if err := <-g.errCh; err != context.Canceled {
			errs.Add(err)
		}
	}
	return errs.Aggregate()
}

// WithCloser runs fn and ensures closer.Close is called, either when
// the context is canceled (to unblock fn) or once fn returns.
func WithCloser(ctx context.Context, closer io.Closer, fn func() error) error {
	errCh := make(chan error, 1)
	go func() { errCh <- fn() }()
	select {
	case <-ctx.Done():
		closer.Close()
		<-errCh
		return context.Canceled
	case err := <-errCh:
		closer.Close()
		return err
	}
}
