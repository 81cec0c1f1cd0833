package engine

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/asynkron/protoactor-go/actor"
)

// DefaultRequestTimeout bounds how long a Client waits for a reply.
const DefaultRequestTimeout = 5 * time.Second

// Engine runs a Processor inside a protoactor actor system.
type Engine struct {
	system *actor.ActorSystem
	pid    *actor.PID
	client *Client
	logger *slog.Logger
}

type options struct {
	logger  *slog.Logger
	timeout time.Duration
	now     func() time.Time
}

// Option configures Start.
type Option func(*options)

// WithLogger sets the logger used by the processor and the actor system.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithRequestTimeout sets the default reply wait of the engine's Client.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Start spawns the processor actor and returns a running engine.
func Start(opts ...Option) *Engine {
	o := options{
		logger:  slog.Default(),
		timeout: DefaultRequestTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	system := actor.NewActorSystem(actor.WithLoggerFactory(func(*actor.ActorSystem) *slog.Logger {
		return o.logger.With("component", "actor")
	}))
	// The store outlives processor restarts after a panicking command.
	store := NewStore(o.now())
	props := actor.PropsFromProducer(func() actor.Actor {
		return NewProcessor(store, o.logger.With("component", "engine"), o.now)
	})
	pid := system.Root.Spawn(props)

	return &Engine{
		system: system,
		pid:    pid,
		client: NewClient(system.Root, pid, o.timeout),
		logger: o.logger,
	}
}

// Client returns a client bound to the engine's processor.
func (e *Engine) Client() *Client { return e.client }

// Stop lets the processor finish every command already queued, then stops it
// and shuts the actor system down.
func (e *Engine) Stop() error {
	if err := e.system.Root.PoisonFuture(e.pid).Wait(); err != nil {
		return fmt.Errorf("stop engine processor: %w", err)
	}
	e.system.Shutdown()
	return nil
}
