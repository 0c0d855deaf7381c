package affiliate

import "time"

// Greeting returns the time-of-day salutation for the dashboard header
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Selamat Pagi"
	case h < 18:
		return "Selamat Petang"
	default:
		return "Selamat Malam"
	}
}
