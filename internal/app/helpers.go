package app

import (
	"time"

	appsync "github.com/nhle/notification-center/internal/sync"
)

// secondsOrDefault converts a configured interval, falling back to the
// poller default when it is not positive.
func secondsOrDefault(sec int) time.Duration {
	if sec <= 0 {
		return appsync.DefaultInterval
	}
	return time.Duration(sec) * time.Second
}
