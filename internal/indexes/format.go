package indexes

import (
	"fmt"
	"time"
)

const (
	kib = 1024.0
	mib = 1024.0 * 1024.0
)

// FormatBytes renders a byte count with a threshold-based unit: bytes below
// 1 KB, then KB, MB and GB with one decimal. Zero renders as "0 MB".
func FormatBytes(bytes uint64) string {
	if bytes == 0 {
		return "0 MB"
	}

	mb := float64(bytes) / mib
	switch {
	case mb >= 1024:
		return fmt.Sprintf("%.1f GB", mb/1024)
	case mb >= 1:
		return fmt.Sprintf("%.1f MB", mb)
	case float64(bytes) >= kib:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kib)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

// FormatUTC renders an instant as "YYYY/MM/DD HH:MM" in UTC.
func FormatUTC(t time.Time) string {
	return t.UTC().Format("2006/01/02 15:04")
}
