package cache

import "fmt"

// RateLimitKey is the counter key for one client within one rate-limited scope.
func RateLimitKey(scope, client string) string {
	return fmt.Sprintf("partscout:ratelimit:%s:%s", scope, client)
}
