package errors

import (
	"context"
	stderrs "errors"
	"net"
	"strings"
)

// Retryable reports whether err is a transient dependency failure worth another attempt
// network, timeout, 5xx and rate-limit failures retry; validation and other 4xx never do
func Retryable(err error) bool {
	if err == nil {
		return false
	}

	// caller gave up; a retry would only burn budget
	if stderrs.Is(err, context.Canceled) {
		return false
	}

	if e, ok := As(err); ok {
		switch e.code {
		case ErrorCodeUnavailable, ErrorCodeTooManyRequests, ErrorCodeTimeout:
			return true
		case ErrorCodeCircuitOpen,
			ErrorCodeValidation, ErrorCodeInvalidArgument, ErrorCodeJSON,
			ErrorCodeUnauthorized, ErrorCodeForbidden, ErrorCodeNotFound,
			ErrorCodeUpstream, ErrorCodeConflict, ErrorCodeDuplicateKey:
			return false
		}
	}

	if retry, ok := pgRetryable(err); ok {
		return retry
	}

	var ne net.Error
	if stderrs.As(err, &ne) && ne.Timeout() {
		return true
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}

	return retryableText(Root(err).Error())
}

// retryableText matches error signatures of clients that do not expose typed errors
func retryableText(msg string) bool {
	s := strings.ToLower(msg)
	for _, sig := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"timeout",
		"temporarily unavailable",
		"service unavailable",
		"bad gateway",
		"gateway timeout",
		"too many requests",
		"rate limit",
		"unexpected eof",
		"status 500", "status 502", "status 503", "status 504", "status 429",
	} {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}
