package session

import "time"

// ActivityType classifies a suspicious event observed during viewing.
type ActivityType string

// Suspicious activity types reported by the platform layer.
const (
	ActivityNavigationAttempt ActivityType = "navigation_attempt"
	ActivityCopyAttempt       ActivityType = "copy_attempt"
	ActivityCutAttempt        ActivityType = "cut_attempt"
	ActivityPasteAttempt      ActivityType = "paste_attempt"
	ActivityPrintAttempt      ActivityType = "print_attempt"
	ActivitySaveAttempt       ActivityType = "save_attempt"
	ActivityDevtoolsDetected  ActivityType = "devtools_detected"
	ActivityScreenshotAttempt ActivityType = "screenshot_attempt"
	ActivityHeartbeatMissing  ActivityType = "heartbeat_missing"
	ActivityAppBackgrounded   ActivityType = "app_backgrounded"
)

// SuspiciousEvent is one observed capture or evasion attempt. Events are
// append-only: each is reported upstream and counted toward the
// termination threshold.
type SuspiciousEvent struct {
	Type      ActivityType
	Detail    string
	Timestamp time.Time
}
