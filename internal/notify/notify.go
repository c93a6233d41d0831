package notify

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Notifier sends desktop notifications.
type Notifier struct {
	Enabled bool
	// run executes the platform command. Tests replace it.
	run func(name string, args ...string) error
}

// New returns a Notifier. A disabled Notifier never sends anything.
func New(enabled bool) *Notifier {
	return &Notifier{Enabled: enabled}
}

// Send displays a notification. macOS uses osascript, Linux uses notify-send;
// other platforms are a no-op.
func (n *Notifier) Send(title, message string) error {
	if n == nil || !n.Enabled {
		return nil
	}
	name, args, ok := command(runtime.GOOS, title, message)
	if !ok {
		return nil
	}
	run := n.run
	if run == nil {
		run = execRun
	}
	if err := run(name, args...); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

func command(goos, title, message string) (string, []string, bool) {
	switch goos {
	case "darwin":
		title = strings.ReplaceAll(title, `"`, `\"`)
		message = strings.ReplaceAll(message, `"`, `\"`)
		script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
		return "osascript", []string{"-e", script}, true
	case "linux":
		return "notify-send", []string{title, message}, true
	default:
		return "", nil, false
	}
}

func execRun(name string, args ...string) error {
	return exec.Command(name, args...).Run()
}

// FormatRunComplete formats the notification sent after a successful run.
// confidence is ignored when analyzed is false.
func FormatRunComplete(query string, analyzed bool, confidence float64, creatives int) (title, message string) {
	title = "✅ Ad Analyst Run Complete"
	if analyzed {
		message = fmt.Sprintf("%q: confidence %.2f, %d creative variations", query, confidence, creatives)
	} else {
		message = fmt.Sprintf("%q: %d creative variations", query, creatives)
	}
	return title, message
}

// FormatRunFailed formats the notification sent when a run aborts.
func FormatRunFailed(query string, err error) (title, message string) {
	return "⚠️ Ad Analyst Run Failed", fmt.Sprintf("%q: %v", query, err)
}
