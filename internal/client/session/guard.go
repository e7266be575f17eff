package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nthieuit88-gif/ecabitnetv7/internal/client/repositories/kv"
	"github.com/nthieuit88-gif/ecabitnetv7/internal/logging"
)

// SessionStore is the remote side of the validity check: a point read of the
// account's authoritative session token and an advisory point write.
type SessionStore interface {
	GetSession(ctx context.Context, userID string) (string, error)
	UpdateSession(ctx context.Context, userID string, sessionID string) error
}

// NoticeFunc is invoked when the guard forces a logout. It may block: the
// guard stays in InvalidatedPendingAck until Acknowledge is called, so a
// blocking notice models the modal the user has to dismiss.
type NoticeFunc func(reason LogoutReason)

// Guard runs the validity-check protocol for one device.
//
// Five trigger sources feed it: the post-activation check, the periodic
// poll, Wake (focus/visibility analog), OnLocalTokenChange (the token key
// mutated by another process on this device) and OnRemoteUserChange (the
// realtime push). All of them funnel into one buffered recheck channel
// drained by a single dispatcher goroutine, so checks never overlap and
// redundant triggers coalesce.
type Guard struct {
	store  kv.Repository
	remote SessionStore
	logger logging.Logger

	pollInterval time.Duration
	notice       NoticeFunc

	mu      sync.Mutex
	state   State
	session *Session

	recheck chan string
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewGuard(store kv.Repository, remote SessionStore, pollInterval time.Duration, notice NoticeFunc, logger logging.Logger) *Guard {
	if notice == nil {
		notice = func(LogoutReason) {}
	}
	return &Guard{
		store:        store,
		remote:       remote,
		logger:       logger.With("module", "session_guard"),
		pollInterval: pollInterval,
		notice:       notice,
		recheck:      make(chan string, 1),
	}
}

// Activate transitions Unauthenticated -> Active for an account that just
// authenticated. The order is fixed: mint a fresh token, persist it locally
// (must succeed, the device cannot function offline without it), then
// best-effort write it to the account's remote record. A remote failure is
// logged and ignored; the device proceeds offline-optimistically.
func (g *Guard) Activate(ctx context.Context, userID string, email string) (*Session, error) {
	token := uuid.NewString()

	if err := g.store.Set(ctx, kv.KeySessionToken, token); err != nil {
		return nil, fmt.Errorf("persisting session token: %w", err)
	}
	if err := g.store.Set(ctx, kv.KeyUserID, userID); err != nil {
		return nil, fmt.Errorf("persisting user id: %w", err)
	}

	if err := g.remote.UpdateSession(ctx, userID, token); err != nil {
		g.logger.Warn(ctx, "advisory session write failed", "error", err)
	}

	sess := &Session{UserID: userID, Email: email, Token: token}

	g.mu.Lock()
	g.state = StateActive
	g.session = sess
	g.mu.Unlock()

	return sess, nil
}

// Start launches the dispatcher and the poll for the current session and
// fires the post-activation check. Idempotent: calling Start while already
// running for the same user returns the existing stop function. The stop
// function cancels the poll, drains the dispatcher and must be called
// before the account changes, so that timers never leak across users.
func (g *Guard) Start(ctx context.Context) func() {
	g.mu.Lock()
	if g.cancel != nil {
		g.mu.Unlock()
		return g.Stop
	}

	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.done = make(chan struct{})
	done := g.done
	g.mu.Unlock()

	go g.dispatch(runCtx, done)

	g.requestCheck("post-login")
	return g.Stop
}

// Stop tears the dispatcher down. Safe to call twice.
func (g *Guard) Stop() {
	g.mu.Lock()
	cancel, done := g.cancel, g.done
	g.cancel = nil
	g.done = nil
	g.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (g *Guard) dispatch(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(g.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-g.recheck:
			g.check(ctx, trigger)
		case <-ticker.C:
			g.check(ctx, "poll")
		}
	}
}

// requestCheck coalesces: if a check is already queued, the trigger merges
// into it. The check reads fresh state when it runs, so dropping the extra
// wakeup loses nothing.
func (g *Guard) requestCheck(trigger string) {
	select {
	case g.recheck <- trigger:
	default:
	}
}

// Wake is the focus/visibility analog: the host application calls this when
// a device comes back to the foreground.
func (g *Guard) Wake() { g.requestCheck("wake") }

// OnLocalTokenChange is called when another process on this device mutated
// the session token key.
func (g *Guard) OnLocalTokenChange() { g.requestCheck("local-store") }

// OnRemoteUserChange is called on the realtime push for the account's
// record: the lowest latency path to noticing a rival login.
func (g *Guard) OnRemoteUserChange() { g.requestCheck("realtime") }

// CheckOnce runs one validity check synchronously. All triggers end up
// here; it is safe to call redundantly, the outcome depends only on the
// current local and remote state.
func (g *Guard) CheckOnce(ctx context.Context) {
	g.check(ctx, "manual")
}

func (g *Guard) check(ctx context.Context, trigger string) {
	g.mu.Lock()
	if g.state != StateActive || g.session == nil {
		g.mu.Unlock()
		return
	}
	sess := g.session
	g.mu.Unlock()

	local, err := g.store.Get(ctx, kv.KeySessionToken)
	if err != nil {
		// Local store misbehaving is not a divergence signal.
		g.logger.Warn(ctx, "local token read failed", "trigger", trigger, "error", err)
		return
	}

	// Authenticated with no local token is definitively invalid, no remote
	// read needed.
	if local == "" {
		g.logger.Info(ctx, "local session token missing, forcing logout", "trigger", trigger)
		g.forceLogout(ctx, ReasonLocalTokenLost)
		return
	}

	remote, err := g.remote.GetSession(ctx, sess.UserID)
	if err != nil {
		// Lenient on unreachability: offline devices keep working. The next
		// trigger retries naturally.
		g.logger.Debug(ctx, "session check skipped", "trigger", trigger, "error", err)
		return
	}
	if remote == "" || remote == local {
		return
	}

	g.logger.Info(ctx, "session superseded by another device", "trigger", trigger)
	g.forceLogout(ctx, ReasonRivalLogin)
}

func (g *Guard) forceLogout(ctx context.Context, reason LogoutReason) {
	g.mu.Lock()
	if g.state != StateActive {
		g.mu.Unlock()
		return
	}
	g.state = StateInvalidatedPendingAck
	g.session = nil
	g.mu.Unlock()

	if err := g.store.Delete(ctx, kv.KeySessionToken); err != nil {
		g.logger.Warn(ctx, "clearing session token failed", "error", err)
	}
	if err := g.store.Delete(ctx, kv.KeyUserID); err != nil {
		g.logger.Warn(ctx, "clearing user id failed", "error", err)
	}

	g.notice(reason)
}

// Acknowledge moves InvalidatedPendingAck -> Unauthenticated once the user
// dismissed the forced-logout notice.
func (g *Guard) Acknowledge() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state == StateInvalidatedPendingAck {
		g.state = StateUnauthenticated
	}
}

// Logout is the manual path: clear local state and return to
// Unauthenticated. No notice is raised.
func (g *Guard) Logout(ctx context.Context) {
	g.mu.Lock()
	g.state = StateUnauthenticated
	g.session = nil
	g.mu.Unlock()

	if err := g.store.Delete(ctx, kv.KeySessionToken); err != nil {
		g.logger.Warn(ctx, "clearing session token failed", "error", err)
	}
	if err := g.store.Delete(ctx, kv.KeyUserID); err != nil {
		g.logger.Warn(ctx, "clearing user id failed", "error", err)
	}
}

// State returns the guard's current state.
func (g *Guard) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Current returns the active session, or nil when not authenticated.
func (g *Guard) Current() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}
