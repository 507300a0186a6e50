// Package worker implements the long-lived actor a terminal resolution
// can promote itself into (spec.md §4.8): it holds a resolved message
// and keeps serving further resolutions against it until an idle
// timeout, at which point it performs one final "terminate" resolution
// and exits. The ticker/select shape is grounded on the coordinator's
// health monitor loop, generalized from a fixed interval to an
// idle-reset timeout.
package worker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/convergenode/resolver/internal/group"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
)

// Resolver is the subset of the resolver's entrypoint a worker needs.
// Defined here rather than imported from internal/resolver to avoid a
// cycle: the resolver constructs workers, so workers can't depend on
// it directly.
type Resolver interface {
	Resolve(input, sub *message.Message, opts options.Options) (message.Value, error)
}

// Worker serves further resolutions against a fixed held message.
// Workers do not chain: every request is resolved against the same
// held state, never the prior request's output.
type Worker struct {
	ID      uuid.UUID
	held    *message.Message
	inbox   group.WorkerInbox
	timeout time.Duration
	resolve Resolver
	log     *logrus.Entry
}

// Spawn starts a worker holding held and returns it with its serve
// loop already running in the background. timeout is worker_timeout;
// options.Infinite disables the idle timeout entirely.
func Spawn(held *message.Message, resolve Resolver, timeout time.Duration, log *logrus.Logger) *Worker {
	id := uuid.New()
	w := &Worker{
		ID:      id,
		held:    held,
		inbox:   group.NewWorkerInbox(),
		timeout: timeout,
		resolve: resolve,
		log:     log.WithField("worker_id", id.String()),
	}
	go w.loop()
	return w
}

// Inbox is the channel future callers' group.Joiner.Wait sends
// requests to once a leader has handed off to this worker.
func (w *Worker) Inbox() group.WorkerInbox { return w.inbox }

func (w *Worker) loop() {
	w.log.Debug("worker started")
	for {
		ctx, cancel := w.waitContext()
		served := group.ServeOnce(ctx, w.inbox, w.serve)
		cancel()
		if !served {
			w.terminate()
			return
		}
	}
}

func (w *Worker) waitContext() (context.Context, context.CancelFunc) {
	if w.timeout == options.Infinite {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), w.timeout)
}

func (w *Worker) serve(sub *message.Message) group.Result {
	out, err := w.resolve.Resolve(w.held, sub, options.Default())
	return group.Result{Output: out, Err: err}
}

// terminate runs one final resolution against the literal "terminate"
// sub-input, with the hashpath policy forced to ignore so a device can
// flush in-memory state without extending the chain, then the worker
// exits.
func (w *Worker) terminate() {
	w.log.Info("worker idle timeout, running terminate resolution")
	opts := options.Default()
	opts.Hashpath = options.HashpathIgnore
	sub := message.New().With(message.KeyPath, message.Str("terminate"))
	if _, err := w.resolve.Resolve(w.held, sub, opts); err != nil {
		w.log.WithError(err).Warn("terminate resolution failed")
	}
}
