package coordinator

import (
	"fmt"
	"strings"
)

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (m MetricStatus) lastValueString() string {
	if !m.HasValue {
		return "none"
	}
	return fmt.Sprint(m.LastValue)
}

// SinceLastDataString returns the time since the last sample, or "Never".
func (s Status) SinceLastDataString() string {
	if !s.LastData.Set {
		return "Never"
	}
	return fmt.Sprintf("%dms", s.SinceLastData)
}

// String renders the multi-line diagnostic report.
func (s Status) String() string {
	var b strings.Builder
	b.WriteString("System Status:\n")
	fmt.Fprintf(&b, "  First data received: %s\n", yesNo(s.FirstSampleReceived))
	fmt.Fprintf(&b, "  Display blanked: %s\n", yesNo(s.DisplayBlanked))
	fmt.Fprintf(&b, "  CPU temp meter hidden: %s\n", yesNo(s.Temp.Hidden))
	fmt.Fprintf(&b, "  CPU load meter hidden: %s\n", yesNo(s.Load.Hidden))
	fmt.Fprintf(&b, "  Last CPU temp: %s\n", s.Temp.lastValueString())
	fmt.Fprintf(&b, "  Last CPU load: %s\n", s.Load.lastValueString())
	fmt.Fprintf(&b, "  Time since last data: %s\n", s.SinceLastDataString())
	return b.String()
}
