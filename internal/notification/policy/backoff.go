package policy

import "time"

// RetryDelay is base * 2^attempt, capped at maxDelay when maxDelay > 0.
func RetryDelay(base, maxDelay time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}

	delay := base
	for range max(attempt, 0) {
		if maxDelay > 0 && delay >= maxDelay {
			return maxDelay
		}
		if delay > time.Duration(1<<62)/2 {
			break
		}
		delay *= 2
	}

	if maxDelay > 0 && delay > maxDelay {
		return maxDelay
	}
	return delay
}
