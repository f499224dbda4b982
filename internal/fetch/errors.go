package fetch

import "errors"

var (
	// ErrNetwork covers connection failures, timeouts and non-success
	// responses. Retried once by the fetcher's retry policy.
	ErrNetwork = errors.New("network failure")

	// ErrParse means the page was retrieved but no price could be
	// extracted. Never retried: the content will not change.
	ErrParse = errors.New("no price found in page content")

	// ErrBlocked means the response looks like bot mitigation (challenge
	// page, 403/429). Never retried: retrying will only dig the hole deeper.
	ErrBlocked = errors.New("request blocked by bot mitigation")
)
