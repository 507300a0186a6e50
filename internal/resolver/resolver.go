// Package resolver implements the nine-stage Converge state machine
// (spec.md §4.7): normalize, cache lookup, dispatch, group join,
// execute, cryptographic link, cache write, notify, and
// recurse/fork/return.
package resolver

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/convergenode/resolver/internal/cache"
	"github.com/convergenode/resolver/internal/convergeerr"
	"github.com/convergenode/resolver/internal/device"
	"github.com/convergenode/resolver/internal/dispatch"
	"github.com/convergenode/resolver/internal/group"
	"github.com/convergenode/resolver/internal/hashpath"
	"github.com/convergenode/resolver/internal/message"
	"github.com/convergenode/resolver/internal/options"
	"github.com/convergenode/resolver/internal/path"
	"github.com/convergenode/resolver/internal/store"
	"github.com/convergenode/resolver/internal/trust"
	"github.com/convergenode/resolver/internal/worker"
)

// Metrics receives resolver-level observations; internal/telemetry
// implements it against Prometheus.
type Metrics interface {
	ResolveDuration(seconds float64)
	ResolveError(kind string)
}

type noopMetrics struct{}

func (noopMetrics) ResolveDuration(float64) {}
func (noopMetrics) ResolveError(string)     {}

// maxRecursionDepth caps both reference-call expansion (stage 1) and
// stage 9 recursion, per spec.md §9's "implementations must cap
// resolution depth or detect reentry."
const maxRecursionDepth = 64

// Resolver runs the Converge state machine over a fixed default device,
// store, trust policy, cache plane, and group registry.
type Resolver struct {
	defaultDevice device.Device
	store         store.Store
	trust         trust.Policy
	cache         *cache.Plane
	groups        *group.Registry
	log           *logrus.Entry
	baseLog       *logrus.Logger
	metrics       Metrics
}

// New builds a Resolver. defaultDevice is the identity/message device
// spec.md §4.4 rule 1 and rule 5 fall back to.
func New(defaultDevice device.Device, st store.Store, tp trust.Policy, cachePlane *cache.Plane, groups *group.Registry, log *logrus.Logger, metrics Metrics) *Resolver {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Resolver{
		defaultDevice: defaultDevice,
		store:         st,
		trust:         tp,
		cache:         cachePlane,
		groups:        groups,
		log:           log.WithField("component", "resolver"),
		baseLog:       log,
		metrics:       metrics,
	}
}

// Resolve is the two-argument inbound call: resolve(input, sub-input,
// options) -> (ok, output) | (error, kind, detail), rendered in Go as
// (message.Value, error).
func (r *Resolver) Resolve(input, sub *message.Message, opts options.Options) (message.Value, error) {
	start := time.Now()
	out, err := r.resolve(input, sub, opts, 0)
	r.metrics.ResolveDuration(time.Since(start).Seconds())
	return out, err
}

// ResolveMessage is the single-argument form: it parses msg's path key
// to split the sub-input (the path to walk) from the input (msg
// itself). A msg with no path resolves to itself unchanged.
func (r *Resolver) ResolveMessage(msg *message.Message, opts options.Options) (message.Value, error) {
	p, ok := path.Of(msg)
	if !ok || len(p) == 0 {
		return message.Sub(msg), nil
	}
	sub := message.New().With(message.KeyPath, path.AsValue(p))
	return r.Resolve(msg, sub, opts)
}

func (r *Resolver) resolve(input, sub *message.Message, opts options.Options, depth int) (message.Value, error) {
	if depth > maxRecursionDepth {
		r.metrics.ResolveError(string(convergeerr.DeviceCall))
		return message.Value{}, convergeerr.New(convergeerr.DeviceCall, "resolver.resolve: max recursion depth exceeded")
	}

	sub, err := r.stage1Normalize(sub, depth)
	if err != nil {
		return message.Value{}, err
	}

	p, _ := path.Of(sub)
	key := p.Head()
	tail := p.Tail()

	// The memoization identity is a commitment over the whole (input,
	// sub-input) pair, not the literal path string: two calls walking
	// the same path against different inputs — successive parent
	// rebuilds in a deep-set, for instance — must never collide on the
	// same cache entry or dedup group.
	requestKey := hashpath.RequestKey(input, sub)

	if v, hit := r.stage2CacheLookup(requestKey); hit {
		return v, nil
	}

	loadedDevice, err := r.stage3LoadDevice(input, opts)
	if err != nil {
		r.metrics.ResolveError(string(convergeerr.DeviceNotLoadable))
		return message.Value{}, err
	}

	plan, err := dispatch.Resolve(loadedDevice, input, key, opts, r.defaultDevice, r.dispatchLoader(opts))
	if err != nil {
		r.metrics.ResolveError("dispatch")
		return message.Value{}, err
	}
	callOpts := opts.WithAddKey(plan.AddKey)

	groupKey := requestKey
	if plan.Group != nil {
		if custom, ok := plan.Group(input, sub, opts); ok {
			groupKey = custom
		}
	}

	// A reentrant call into its own ancestor group bypasses Join
	// entirely (spec.md §5 "Reentrancy"): joining here would block this
	// very goroutine on a leader that can't reply until this call
	// returns, a guaranteed self-deadlock.
	var leader *group.Leader
	var joiner *group.Joiner
	if opts.InGroup(groupKey) {
		leader = r.groups.Detached(groupKey)
	} else {
		leader, joiner = r.groups.Join(groupKey)
	}
	if joiner != nil {
		res, err := joiner.Wait(context.Background(), sub)
		if err != nil {
			return message.Value{}, err
		}
		return res.Output, res.Err
	}
	nestedOpts := callOpts.PushGroup(groupKey)

	out, err := plan.Handler(input, sub, nestedOpts)
	if err != nil {
		wrapped := convergeerr.Wrap(convergeerr.DeviceCall, "resolver.stage5Execute", err)
		leader.Notify(group.Result{Err: wrapped})
		leader.Leave()
		r.metrics.ResolveError(string(convergeerr.DeviceCall))
		return message.Value{}, wrapped
	}

	out = r.stage6Link(input, out, sub, opts)

	if err := r.cache.Write(requestKey, out, opts, input, sub); err != nil {
		r.log.WithError(err).Warn("cache write failed")
	}

	leader.Notify(group.Result{Output: out})

	if len(tail) > 0 {
		if out.Kind != message.KindMessage || out.Msg == nil {
			leader.Leave()
			return message.Value{}, convergeerr.New(convergeerr.DeviceNotLoadable, "resolver.stage9: cannot recurse into a scalar output")
		}
		nextSub := message.New().With(message.KeyPath, path.AsValue(tail))
		leader.Leave()
		return r.resolve(out.Msg, nextSub, opts, depth+1)
	}

	if opts.SpawnWorker && out.Kind == message.KindMessage && out.Msg != nil {
		w := worker.Spawn(out.Msg, r, opts.WorkerTimeout, r.baseLog)
		leader.HandOff(w.Inbox())
	} else {
		leader.Leave()
	}

	return out, nil
}

// stage1Normalize accepts a sub-input whose path head may itself be a
// 43-byte content id (a reference call): the referenced message is
// fetched and substituted in, with the tail carried forward, before
// dispatch ever sees it.
func (r *Resolver) stage1Normalize(sub *message.Message, depth int) (*message.Message, error) {
	if depth > maxRecursionDepth {
		return nil, convergeerr.New(convergeerr.DeviceCall, "resolver.stage1Normalize: max recursion depth exceeded")
	}
	p, ok := path.Of(sub)
	if !ok || len(p) == 0 {
		return sub, nil
	}
	head := p.Head()
	if !hashpath.IsContentID(head) {
		return sub, nil
	}

	blob, err := r.store.Read(head)
	if err != nil {
		return nil, convergeerr.Wrap(convergeerr.DeviceNotLoadable, "resolver.stage1Normalize", err)
	}
	referenced, err := message.UnmarshalMessage(blob.Data)
	if err != nil {
		return nil, convergeerr.Wrap(convergeerr.DeviceNotLoadable, "resolver.stage1Normalize", err)
	}

	nextSub := referenced.With(message.KeyPath, path.AsValue(p.Tail()))
	return r.stage1Normalize(nextSub, depth+1)
}

func (r *Resolver) stage2CacheLookup(cacheKey string) (message.Value, bool) {
	return r.cache.Read(cacheKey)
}

func (r *Resolver) stage3LoadDevice(input *message.Message, opts options.Options) (device.Device, error) {
	devVal, ok := input.Device()
	if !ok {
		return r.defaultDevice, nil
	}
	ref := device.RefFromValue(devVal, hashpath.IsContentID)
	return device.Load(ref, opts, preloadedDevices(opts), r.store, r.trust)
}

func (r *Resolver) dispatchLoader(opts options.Options) dispatch.Loader {
	return func(ref device.Ref) (device.Device, error) {
		return device.Load(ref, opts, preloadedDevices(opts), r.store, r.trust)
	}
}

// stage6Link extends the hashpath chain when the output is a
// sub-message and the hashpath policy calls for it; a scalar output
// bypasses linking entirely.
func (r *Resolver) stage6Link(input *message.Message, out message.Value, sub *message.Message, opts options.Options) message.Value {
	if opts.Hashpath != options.HashpathUpdate || out.Kind != message.KindMessage || out.Msg == nil {
		return out
	}

	var prior hashpath.Hashpath
	if hp, ok := input.Hashpath(); ok {
		if parsed, ok2 := hashpath.Parse(hp.AsString()); ok2 {
			prior = parsed
		}
	}
	next := hashpath.Push(prior, sub)
	linked := out.Msg.With(message.KeyHashpath, message.Str(hashpath.Render(next)))
	return message.Sub(linked)
}

func preloadedDevices(opts options.Options) map[string]device.Device {
	out := make(map[string]device.Device, len(opts.PreloadedDevices))
	for k, v := range opts.PreloadedDevices {
		if d, ok := v.(device.Device); ok {
			out[k] = d
		}
	}
	return out
}
