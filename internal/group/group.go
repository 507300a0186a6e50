// Package group implements the deduplication plane (spec.md §4.6): a
// shared, concurrency-safe registry that lets concurrently-arriving
// callers for the same (input, sub-input) pair share a single handler
// invocation. It is grounded on the same sharded-map-behind-a-mutex
// shape the coordinator's shard registry uses, generalized from
// node/shard ownership to resolve-group membership.
package group

import (
	"context"
	"sync"

	"github.com/convergenode/resolver/internal/message"
)

// Result is what a leader hands back to every joiner waiting on the
// same group key. Output is a message.Value rather than a *Message
// because a resolution's output may be scalar (spec.md §8's "resolve
// returns (ok, M[K])" for a scalar key).
type Result struct {
	Output message.Value
	Err    error
}

type joinRequest struct {
	subInput *message.Message
	reply    chan Result
}

type member struct {
	inbox chan joinRequest
}

// Registry tracks, per group key, the member presently responsible for
// resolving it. Joins and leaves are atomic under mu; no lock is held
// while waiting on a channel.
type Registry struct {
	mu     sync.Mutex
	groups map[string]*member
}

// NewRegistry returns an empty group registry.
func NewRegistry() *Registry {
	return &Registry{groups: make(map[string]*member)}
}

// Leader is the handle a caller holds after becoming the sole member
// of a group — it owns the obligation to execute the handler and
// notify whoever joins while it's running.
type Leader struct {
	registry *Registry
	key      string
	self     *member
}

// Joiner is the handle a caller holds when it found an existing
// leader; it must send a resolve request and block for the reply.
type Joiner struct {
	leaderInbox chan joinRequest
}

// Join enters the group named by key. If the group had no member, the
// caller becomes leader (leader != nil, joiner == nil). Otherwise the
// caller becomes a joiner against the existing leader (leader == nil,
// joiner != nil).
func (r *Registry) Join(key string) (*Leader, *Joiner) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.groups[key]; ok {
		return nil, &Joiner{leaderInbox: existing.inbox}
	}

	m := &member{inbox: make(chan joinRequest, 64)}
	r.groups[key] = m
	return &Leader{registry: r, key: key, self: m}, nil
}

// Detached returns a Leader for key without registering it in the
// registry. Used when a reentrant call already holds key as an
// ancestor group (spec.md §5 "Reentrancy"): the caller still owns the
// handler invocation, but there is no shared membership to track, so
// Notify/Leave/HandOff on the returned Leader are no-ops against the
// registry and Notify's drain finds nothing queued.
func (r *Registry) Detached(key string) *Leader {
	return &Leader{registry: r, key: key, self: &member{inbox: make(chan joinRequest, 1)}}
}

// Members reports how many members are currently registered for key —
// 0 or 1 in this implementation, since only the leader (or its
// successor worker) is ever registered.
func (r *Registry) Members(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[key]; ok {
		return 1
	}
	return 0
}

// Wait sends a resolve request carrying sub for the leader and blocks
// for its reply or ctx's cancellation. A joiner that times out reports
// a local failure without unregistering the leader — spec.md §5's
// cancellation guidance, since the leader doesn't know the joiner gave
// up.
func (j *Joiner) Wait(ctx context.Context, sub *message.Message) (Result, error) {
	reply := make(chan Result, 1)
	select {
	case j.leaderInbox <- joinRequest{subInput: sub, reply: reply}:
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	select {
	case res := <-reply:
		return res, nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Notify drains every pending resolve request queued against the
// leader's inbox and replies to each with result — the
// receive-with-zero-timeout sweep spec.md §4.6 describes. Per §9's
// open question, a joiner that registers after this sweep starts but
// before Leave/HandOff runs can still be missed; that race window is
// left untreated, matching the source.
func (l *Leader) Notify(result Result) {
	for {
		select {
		case req := <-l.self.inbox:
			req.reply <- result
		default:
			return
		}
	}
}

// Leave removes the leader from the group. Used in the terminal,
// no-worker case: a dead leader can't answer a future joiner's send,
// so the group is better left empty for the next caller to restart
// from stage 4 as a new leader, rather than left pointing at a leader
// nobody will ever drain again.
func (l *Leader) Leave() {
	l.registry.mu.Lock()
	defer l.registry.mu.Unlock()
	if cur, ok := l.registry.groups[l.key]; ok && cur == l.self {
		delete(l.registry.groups, l.key)
	}
}

// WorkerInbox is the channel type a spawned worker listens on to serve
// further resolve requests in the leader's place.
type WorkerInbox = chan joinRequest

// NewWorkerInbox allocates an inbox for a freshly spawned worker,
// sized the same as a leader's.
func NewWorkerInbox() WorkerInbox { return make(WorkerInbox, 64) }

// HandOff atomically replaces the leader's membership with a worker's
// inbox, so future callers route to the worker instead of restarting
// as a new leader (spec.md §4.6's "atomically leaves and joins the
// spawned worker in its place").
func (l *Leader) HandOff(workerInbox WorkerInbox) {
	l.registry.mu.Lock()
	defer l.registry.mu.Unlock()
	if cur, ok := l.registry.groups[l.key]; ok && cur == l.self {
		l.registry.groups[l.key] = &member{inbox: workerInbox}
	}
}

// ServeOnce drains one pending request from a worker inbox and
// replies with handle's result for that request's sub-input, used by
// internal/worker's resolve loop. It reports false if ctx was
// cancelled before a request arrived.
func ServeOnce(ctx context.Context, inbox WorkerInbox, handle func(sub *message.Message) Result) (served bool) {
	select {
	case req := <-inbox:
		req.reply <- handle(req.subInput)
		return true
	case <-ctx.Done():
		return false
	}
}
