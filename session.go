package secureshare

import (
	"errors"

	"github.com/secureshare/client-go/internal/session"
)

// SessionState is a viewing session's lifecycle position.
type SessionState = session.State

// Session states.
const (
	SessionIdle         = session.StateIdle
	SessionDecrypting   = session.StateDecrypting
	SessionDisplaying   = session.StateDisplaying
	SessionExpiring     = session.StateExpiring
	SessionSuspicious   = session.StateSuspicious
	SessionBackgrounded = session.StateBackgrounded
	SessionTerminated   = session.StateTerminated
)

// CloseReason explains why a viewing session terminated.
type CloseReason = session.CloseReason

// Close reasons.
const (
	ClosedDecryptionFailed        = session.ReasonDecryptionFailed
	ClosedExpired                 = session.ReasonExpired
	ClosedMultipleCaptureAttempts = session.ReasonMultipleCaptureAttempts
	ClosedOneTimeBackgrounded     = session.ReasonOneTimeBackgrounded
	ClosedConnectivityLost        = session.ReasonConnectivityLost
	ClosedInactivityTimeout       = session.ReasonInactivityTimeout
	ClosedUserClosed              = session.ReasonUserClosed
)

// ActivityType classifies a suspicious event.
type ActivityType = session.ActivityType

// Suspicious activity types.
const (
	ActivityNavigationAttempt = session.ActivityNavigationAttempt
	ActivityCopyAttempt       = session.ActivityCopyAttempt
	ActivityCutAttempt        = session.ActivityCutAttempt
	ActivityPasteAttempt      = session.ActivityPasteAttempt
	ActivityPrintAttempt      = session.ActivityPrintAttempt
	ActivitySaveAttempt       = session.ActivitySaveAttempt
	ActivityDevtoolsDetected  = session.ActivityDevtoolsDetected
	ActivityScreenshotAttempt = session.ActivityScreenshotAttempt
	ActivityHeartbeatMissing  = session.ActivityHeartbeatMissing
	ActivityAppBackgrounded   = session.ActivityAppBackgrounded
)

// ViewingSession is a supervised decrypted view of one piece of content.
// It enforces the share's policy locally: expiry, one-time semantics,
// the suspicious-activity threshold, the inactivity watchdog and the
// connectivity grace window. Termination wipes the plaintext and is
// final; a new view requires a new Access.
//
// All methods are safe for concurrent use.
type ViewingSession struct {
	machine *session.Machine
	grant   *AccessGrant
}

// Grant returns the grant this session was started from. The grant's
// Ciphertext remains valid after termination; the plaintext does not.
func (s *ViewingSession) Grant() *AccessGrant {
	return s.grant
}

// State returns the session's current state.
func (s *ViewingSession) State() SessionState {
	return s.machine.State()
}

// CloseReason returns why the session terminated. Empty until then.
func (s *ViewingSession) CloseReason() CloseReason {
	return s.machine.Reason()
}

// Done is closed when the session terminates.
func (s *ViewingSession) Done() <-chan struct{} {
	return s.machine.Done()
}

// Plaintext returns the decrypted content. The returned buffer is owned
// by the session and is zeroed on termination; callers must not retain
// it past Done.
func (s *ViewingSession) Plaintext() ([]byte, error) {
	data, err := s.machine.Plaintext()
	if errors.Is(err, session.ErrNotDisplaying) {
		return nil, ErrSessionTerminated
	}
	return data, err
}

// Heartbeat signals viewer liveness and re-arms the inactivity watchdog.
func (s *ViewingSession) Heartbeat() {
	s.machine.Heartbeat()
}

// ReportSuspicious records a suspicious event against the session. The
// event is reported to the backend, and the session terminates once the
// configured threshold is reached.
func (s *ViewingSession) ReportSuspicious(activityType ActivityType, detail string) {
	s.machine.Suspicious(session.SuspiciousEvent{
		Type:   activityType,
		Detail: detail,
	})
}

// SetBackgrounded records an app lifecycle change. Backgrounding a
// one-time view terminates it.
func (s *ViewingSession) SetBackgrounded(backgrounded bool) {
	s.machine.SetBackgrounded(backgrounded)
}

// SetConnectivity records network availability. Loss sustained beyond
// the grace window terminates the session.
func (s *ViewingSession) SetConnectivity(online bool) {
	s.machine.SetConnectivity(online)
}

// Close terminates the session on the viewer's behalf. Idempotent.
func (s *ViewingSession) Close() {
	s.machine.Close()
}
