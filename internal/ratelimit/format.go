package ratelimit

import "strconv"

func formatInt(v int) string { return strconv.Itoa(v) }

// retryAfterSeconds arredonda para cima: Retry-After=0 faria o cliente
// tentar antes da hora.
func retryAfterSeconds(secs float64) string {
	s := int(secs)
	if float64(s) < secs {
		s++
	}
	if s < 1 {
		s = 1
	}
	return formatInt(s)
}
