// Package session implements the secure-viewing state machine. One
// Machine supervises one decrypted view of one piece of content: it
// enforces the expiry countdown, the suspicious-event threshold, the
// inactivity watchdog and the connectivity grace window, and guarantees
// that termination wipes the plaintext exactly once.
//
// The machine is event-driven: external signals (heartbeats, lifecycle
// changes, suspicious events) and timer firings all funnel through the
// same mutex, so transition logic runs strictly sequentially. Timers are
// created through an injected Clock, which makes every time-dependent
// transition testable without wall-clock waits.
package session

import (
	"errors"
	"sync"
	"time"
)

// State is the machine's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateDecrypting
	StateDisplaying
	StateExpiring
	StateSuspicious
	StateBackgrounded
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDecrypting:
		return "decrypting"
	case StateDisplaying:
		return "displaying"
	case StateExpiring:
		return "expiring"
	case StateSuspicious:
		return "suspicious"
	case StateBackgrounded:
		return "backgrounded"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// CloseReason explains a transition into StateTerminated.
type CloseReason string

const (
	ReasonDecryptionFailed        CloseReason = "decryption_failed"
	ReasonExpired                 CloseReason = "expired"
	ReasonMultipleCaptureAttempts CloseReason = "multiple_capture_attempts"
	ReasonOneTimeBackgrounded     CloseReason = "one_time_backgrounded"
	ReasonConnectivityLost        CloseReason = "connectivity_lost"
	ReasonInactivityTimeout       CloseReason = "inactivity_timeout"
	ReasonUserClosed              CloseReason = "user_closed"
)

// Default enforcement windows.
const (
	DefaultSuspiciousThreshold = 3
	DefaultInactivityTimeout   = 5 * time.Minute
	DefaultConnectivityGrace   = 10 * time.Second
)

// ErrNotDisplaying is returned when plaintext is requested outside the
// displaying states.
var ErrNotDisplaying = errors.New("session is not displaying content")

// ErrTerminated is returned when an operation requires a live session.
var ErrTerminated = errors.New("session already terminated")

// Reporter receives security telemetry. Implementations must be
// fire-and-forget: the machine never waits on them and never sees their
// errors.
type Reporter interface {
	ReportSuspicious(contentID string, activityType ActivityType, detail string)
	ReportClosed(contentID string, reason CloseReason)
}

// Config assembles a machine. Decrypt runs once on Start; its failure is
// terminal. OnClosed fires exactly once, after secrets are wiped.
type Config struct {
	ContentID string
	OneTime   bool
	// ExpiresAt bounds a time_based view. Zero means no expiry timer.
	ExpiresAt time.Time

	Decrypt  func() ([]byte, error)
	Reporter Reporter
	Clock    Clock

	// OnClosed is invoked exactly once on termination.
	OnClosed func(CloseReason)
	// OnWarning surfaces non-terminal conditions, like a time_based view
	// returning from background.
	OnWarning func(string)
	// WipeSession clears the locally persisted session record.
	WipeSession func()

	SuspiciousThreshold int
	InactivityTimeout   time.Duration
	ConnectivityGrace   time.Duration
}

// Machine is the per-view state machine. All methods are safe for
// concurrent use; handlers and timer callbacks serialize on one mutex.
type Machine struct {
	cfg Config

	mu              sync.Mutex
	state           State
	reason          CloseReason
	plaintext       []byte
	suspiciousCount int
	backgrounded    bool
	offline         bool

	expiryTimer       Timer
	inactivityTimer   Timer
	connectivityTimer Timer

	done chan struct{}
}

// New creates a machine in StateIdle.
func New(cfg Config) *Machine {
	if cfg.Clock == nil {
		cfg.Clock = RealClock()
	}
	if cfg.SuspiciousThreshold <= 0 {
		cfg.SuspiciousThreshold = DefaultSuspiciousThreshold
	}
	if cfg.InactivityTimeout <= 0 {
		cfg.InactivityTimeout = DefaultInactivityTimeout
	}
	if cfg.ConnectivityGrace <= 0 {
		cfg.ConnectivityGrace = DefaultConnectivityGrace
	}
	return &Machine{
		cfg:   cfg,
		state: StateIdle,
		done:  make(chan struct{}),
	}
}

// Start decrypts the content and begins supervision. A decryption
// failure terminates the session with ReasonDecryptionFailed and returns
// the underlying error.
func (m *Machine) Start() error {
	m.mu.Lock()
	if m.state != StateIdle {
		m.mu.Unlock()
		return ErrTerminated
	}
	m.state = StateDecrypting
	m.mu.Unlock()

	// Decrypt outside the lock: it may be slow for large payloads, and
	// it must not block timer callbacks.
	plaintext, err := m.cfg.Decrypt()

	m.mu.Lock()
	if m.state != StateDecrypting {
		// Terminated while decrypting; discard the late result.
		m.mu.Unlock()
		if plaintext != nil {
			zero(plaintext)
		}
		return ErrTerminated
	}
	if err != nil {
		m.terminateLocked(ReasonDecryptionFailed)
		m.mu.Unlock()
		return err
	}

	m.plaintext = plaintext
	m.state = StateDisplaying

	if !m.cfg.OneTime && !m.cfg.ExpiresAt.IsZero() {
		remaining := m.cfg.ExpiresAt.Sub(m.cfg.Clock.Now())
		if remaining <= 0 {
			m.terminateLocked(ReasonExpired)
			m.mu.Unlock()
			return nil
		}
		m.expiryTimer = m.cfg.Clock.AfterFunc(remaining, m.onExpiry)
	}
	m.inactivityTimer = m.cfg.Clock.AfterFunc(m.cfg.InactivityTimeout, m.onInactivity)
	m.mu.Unlock()
	return nil
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Reason returns the close reason once terminated.
func (m *Machine) Reason() CloseReason {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reason
}

// Done is closed when the machine terminates.
func (m *Machine) Done() <-chan struct{} {
	return m.done
}

// Plaintext returns the decrypted content while it is displayable.
func (m *Machine) Plaintext() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateDisplaying && m.state != StateBackgrounded {
		return nil, ErrNotDisplaying
	}
	return m.plaintext, nil
}

// Heartbeat signals viewer liveness and re-arms the inactivity watchdog.
func (m *Machine) Heartbeat() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateTerminated || m.inactivityTimer == nil {
		return
	}
	m.inactivityTimer.Stop()
	m.inactivityTimer = m.cfg.Clock.AfterFunc(m.cfg.InactivityTimeout, m.onInactivity)
}

// Suspicious records a suspicious event, reports it upstream, and
// terminates once the threshold is reached.
func (m *Machine) Suspicious(ev SuspiciousEvent) {
	m.mu.Lock()
	if m.state == StateTerminated || m.state == StateIdle {
		m.mu.Unlock()
		return
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = m.cfg.Clock.Now()
	}

	m.suspiciousCount++
	report := m.cfg.Reporter
	terminal := m.suspiciousCount >= m.cfg.SuspiciousThreshold
	if terminal {
		m.state = StateSuspicious
		m.terminateLocked(ReasonMultipleCaptureAttempts)
	}
	m.mu.Unlock()

	if report != nil {
		report.ReportSuspicious(m.cfg.ContentID, ev.Type, ev.Detail)
	}
}

// SetBackgrounded records an app lifecycle change. Backgrounding a
// one-time view is terminal; a time_based view records it and surfaces a
// warning when the app returns to the foreground.
func (m *Machine) SetBackgrounded(backgrounded bool) {
	m.mu.Lock()
	if m.state == StateTerminated || m.state == StateIdle {
		m.mu.Unlock()
		return
	}

	if backgrounded {
		if m.cfg.OneTime {
			m.terminateLocked(ReasonOneTimeBackgrounded)
			m.mu.Unlock()
			return
		}
		m.backgrounded = true
		m.state = StateBackgrounded
		report := m.cfg.Reporter
		m.mu.Unlock()
		if report != nil {
			report.ReportSuspicious(m.cfg.ContentID, ActivityAppBackgrounded, "app moved to background")
		}
		return
	}

	wasBackgrounded := m.backgrounded
	m.backgrounded = false
	if m.state == StateBackgrounded {
		m.state = StateDisplaying
	}
	warn := m.cfg.OnWarning
	m.mu.Unlock()

	if wasBackgrounded && warn != nil {
		warn("content was backgrounded while visible")
	}
}

// SetConnectivity records network availability. Sustained loss beyond
// the grace window is terminal; recovery within it cancels the countdown.
func (m *Machine) SetConnectivity(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateTerminated {
		return
	}

	if online {
		m.offline = false
		if m.connectivityTimer != nil {
			m.connectivityTimer.Stop()
			m.connectivityTimer = nil
		}
		return
	}

	if m.offline {
		return // grace window already running
	}
	m.offline = true
	m.connectivityTimer = m.cfg.Clock.AfterFunc(m.cfg.ConnectivityGrace, m.onConnectivityLost)
}

// Close terminates the session on the viewer's behalf.
func (m *Machine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminateLocked(ReasonUserClosed)
}

func (m *Machine) onExpiry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateTerminated {
		return
	}
	m.state = StateExpiring
	m.terminateLocked(ReasonExpired)
}

func (m *Machine) onInactivity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.terminateLocked(ReasonInactivityTimeout)
}

func (m *Machine) onConnectivityLost() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.offline {
		return
	}
	m.terminateLocked(ReasonConnectivityLost)
}

// terminateLocked is the single entry into the absorbing terminal state.
// Idempotent: re-entry is a no-op. Cancels every timer exactly once,
// wipes the plaintext and the persisted session record, then notifies.
// Callbacks run on a separate goroutine so a slow consumer cannot hold
// the machine lock.
func (m *Machine) terminateLocked(reason CloseReason) {
	if m.state == StateTerminated {
		return
	}
	m.state = StateTerminated
	m.reason = reason

	for _, t := range []Timer{m.expiryTimer, m.inactivityTimer, m.connectivityTimer} {
		if t != nil {
			t.Stop()
		}
	}
	m.expiryTimer, m.inactivityTimer, m.connectivityTimer = nil, nil, nil

	zero(m.plaintext)
	m.plaintext = nil

	wipe := m.cfg.WipeSession
	report := m.cfg.Reporter
	onClosed := m.cfg.OnClosed
	contentID := m.cfg.ContentID

	close(m.done)

	go func() {
		if wipe != nil {
			wipe()
		}
		if report != nil {
			report.ReportClosed(contentID, reason)
		}
		if onClosed != nil {
			onClosed(reason)
		}
	}()
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
