// Package session holds the process-wide auth state of the client.
//
// The stored bearer token is the only source of truth: the Manager derives the
// identity from it, caches the display name next to it and tells subscribers
// whenever either changes. Forced logouts from the server and from the
// inactivity watchdog are funneled through the Invalidator.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gxmovies/storefront-client/internal/auth"
	"github.com/gxmovies/storefront-client/internal/domain"
	"github.com/gxmovies/storefront-client/internal/events"
	"github.com/gxmovies/storefront-client/internal/observability"
	"github.com/gxmovies/storefront-client/internal/tokenstore"
)

const defaultFetchTimeout = 10 * time.Second

// UserLookup resolves the display name of a subject.
type UserLookup interface {
	DisplayName(ctx context.Context, subjectID string) (string, error)
}

// State is what subscribers observe after every change.
type State = events.SessionChangedPayload

// Manager owns the decoded identity and the cached display name.
//
// storeMu serializes store writes together with the state change they
// belong to; mu only guards the in-memory fields, so readers such as Identity
// never wait on store I/O. storeMu is always taken before mu.
type Manager struct {
	store        tokenstore.Store
	decoder      *auth.Decoder
	dispatcher   events.Dispatcher
	logger       *zap.Logger
	fetchTimeout time.Duration

	storeMu sync.Mutex

	mu          sync.Mutex
	users       UserLookup
	identity    *domain.Identity
	displayName string
	// generation changes on every login, logout and refresh; a name fetch
	// only lands if the generation it started under is still current.
	generation uint64

	fetches sync.WaitGroup
}

// NewManager wires a manager. dispatcher may be nil when nobody subscribes.
func NewManager(store tokenstore.Store, decoder *auth.Decoder, dispatcher events.Dispatcher, logger *zap.Logger) *Manager {
	if decoder == nil {
		decoder = auth.NewDecoder()
	}
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher()
	}
	return &Manager{
		store:        store,
		decoder:      decoder,
		dispatcher:   dispatcher,
		logger:       observability.OrNop(logger),
		fetchTimeout: defaultFetchTimeout,
	}
}

// SetUserLookup installs the name resolver. It is separate from NewManager
// because the resolver calls the backend through a pipeline that itself
// depends on the session.
func (m *Manager) SetUserLookup(users UserLookup) {
	m.mu.Lock()
	m.users = users
	m.mu.Unlock()
}

// SetFetchTimeout bounds each display-name lookup.
func (m *Manager) SetFetchTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	m.fetchTimeout = d
	m.mu.Unlock()
}

// Init restores the session from the store without touching the network.
// A token that cannot be decoded is treated as no session and removed.
func (m *Manager) Init(ctx context.Context) {
	m.storeMu.Lock()
	defer m.storeMu.Unlock()

	token, err := m.store.Read(ctx)
	if errors.Is(err, tokenstore.ErrNotFound) {
		return
	}
	if err != nil {
		m.logger.Warn("stored token unreadable; starting logged out", zap.Error(err))
		m.clearStore(ctx)
		return
	}

	identity, err := m.decoder.Decode(token)
	if err != nil {
		m.logger.Warn("stored token could not be decoded; starting logged out", zap.Error(err))
		m.clearStore(ctx)
		return
	}
	name, nameErr := m.store.ReadDisplayName(ctx)

	m.mu.Lock()
	m.generation++
	m.identity = identity
	if nameErr == nil {
		m.displayName = name
	}
	m.mu.Unlock()
	m.logger.Info("session restored", zap.String("subject_id", identity.SubjectID), zap.String("role", string(identity.Role)))
}

// Login persists token, decodes it and starts the display-name fetch in the
// background. A token that cannot be decoded leaves the client logged out.
func (m *Manager) Login(ctx context.Context, token string) (*domain.Identity, error) {
	m.storeMu.Lock()
	if err := m.store.Clear(ctx); err != nil {
		m.storeMu.Unlock()
		return nil, err
	}
	if err := m.store.Save(ctx, token); err != nil {
		m.storeMu.Unlock()
		return nil, err
	}

	identity, err := m.decoder.Decode(token)
	if err != nil {
		m.clearStore(ctx)
		m.reset()
		m.storeMu.Unlock()
		m.publish(ctx, State{})
		return nil, err
	}

	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.identity = identity
	m.displayName = ""
	users := m.users
	m.mu.Unlock()
	m.storeMu.Unlock()

	m.logger.Info("logged in", zap.String("subject_id", identity.SubjectID), zap.String("role", string(identity.Role)))
	m.publish(ctx, State{Identity: copyIdentity(identity)})
	m.startFetch(ctx, users, gen, identity)
	return copyIdentity(identity), nil
}

// Logout clears the store and the in-memory state. It never fails: store
// errors are logged and the in-memory session is dropped regardless.
func (m *Manager) Logout(ctx context.Context) {
	m.storeMu.Lock()
	wasActive := m.reset()
	m.clearStore(ctx)
	m.storeMu.Unlock()

	if wasActive {
		m.logger.Info("logged out")
		m.publish(ctx, State{})
	}
}

// LogoutIfCurrent logs out only while token is still the stored token and
// reports whether it did. An unreadable store counts as a match.
func (m *Manager) LogoutIfCurrent(ctx context.Context, token string) bool {
	m.storeMu.Lock()
	stored, err := m.store.Read(ctx)
	switch {
	case errors.Is(err, tokenstore.ErrNotFound):
		m.storeMu.Unlock()
		return false
	case err != nil:
		m.logger.Warn("token store read failed; logging out anyway", zap.Error(err))
	case stored != token:
		m.storeMu.Unlock()
		return false
	}
	wasActive := m.reset()
	m.clearStore(ctx)
	m.storeMu.Unlock()

	if wasActive {
		m.logger.Info("logged out")
		m.publish(ctx, State{})
	}
	return true
}

// RefreshDisplayName re-fetches the name of the current identity, if any.
func (m *Manager) RefreshDisplayName(ctx context.Context) {
	m.mu.Lock()
	if m.identity == nil {
		m.mu.Unlock()
		return
	}
	m.generation++
	gen := m.generation
	identity := copyIdentity(m.identity)
	users := m.users
	m.mu.Unlock()

	m.startFetch(ctx, users, gen, identity)
}

// Identity returns a copy of the current identity, or nil when logged out.
func (m *Manager) Identity() *domain.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyIdentity(m.identity)
}

// DisplayName returns the cached name and whether one is known.
func (m *Manager) DisplayName() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.displayName, m.displayName != ""
}

// State returns the current identity and name together.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State{Identity: copyIdentity(m.identity), DisplayName: m.displayName}
}

// Subscribe calls fn after every login, logout and name update.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	return m.dispatcher.Subscribe(events.EventSessionChanged, func(_ context.Context, e events.Event) error {
		if state, ok := e.Payload.(State); ok {
			fn(state)
		}
		return nil
	})
}

// Wait blocks until in-flight name fetches have finished.
func (m *Manager) Wait() {
	m.fetches.Wait()
}

func (m *Manager) startFetch(ctx context.Context, users UserLookup, gen uint64, identity *domain.Identity) {
	if users == nil {
		return
	}
	m.mu.Lock()
	timeout := m.fetchTimeout
	m.mu.Unlock()

	m.fetches.Add(1)
	go func() {
		defer m.fetches.Done()

		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()

		name, err := users.DisplayName(fetchCtx, identity.SubjectID)
		if err != nil {
			if m.isCurrent(gen, identity) {
				m.logger.Warn("display name lookup failed", zap.String("subject_id", identity.SubjectID), zap.Error(err))
			}
			return
		}

		// Holding storeMu keeps logins and logouts out until the name is cached.
		m.storeMu.Lock()
		m.mu.Lock()
		if m.generation != gen || !m.identity.Equal(identity) {
			m.mu.Unlock()
			m.storeMu.Unlock()
			m.logger.Debug("discarding stale display name", zap.String("subject_id", identity.SubjectID))
			return
		}
		m.displayName = name
		state := State{Identity: copyIdentity(m.identity), DisplayName: name}
		m.mu.Unlock()
		if err := m.store.SaveDisplayName(fetchCtx, name); err != nil {
			m.logger.Warn("caching display name failed", zap.Error(err))
		}
		m.storeMu.Unlock()

		m.publish(fetchCtx, state)
	}()
}

func (m *Manager) isCurrent(gen uint64, identity *domain.Identity) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation == gen && m.identity.Equal(identity)
}

// reset drops the in-memory session and reports whether one was active.
func (m *Manager) reset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	wasActive := m.identity != nil
	m.generation++
	m.identity = nil
	m.displayName = ""
	return wasActive
}

func (m *Manager) clearStore(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("clearing token store failed", zap.Error(err))
	}
}

func (m *Manager) publish(ctx context.Context, state State) {
	if err := m.dispatcher.Publish(ctx, events.New(events.EventSessionChanged, state)); err != nil {
		m.logger.Warn("session subscriber failed", zap.Error(err))
	}
}

func copyIdentity(id *domain.Identity) *domain.Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
