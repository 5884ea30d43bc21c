package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while users still get a readable message.
var (
	// ErrInvalidAPIURL is returned when the API URL is not an absolute http(s) URL.
	ErrInvalidAPIURL = errors.New("invalid API URL: expected an absolute http(s) URL to api.php")

	// ErrEmptyRootCategory is returned when no root category is configured.
	ErrEmptyRootCategory = errors.New("no root category specified")

	// ErrInvalidNestedLimit is returned when the nested limit is not positive.
	// A limit of zero would list nothing, not even the root.
	ErrInvalidNestedLimit = errors.New("invalid nested limit: must be positive")

	// ErrInvalidMemberLimit is returned when the member limit is outside 1-500.
	ErrInvalidMemberLimit = errors.New("invalid member limit: must be between 1 and 500")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the request delay is negative.
	// Use 0 for no delay between requests.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidTopCount is returned when a report table size is negative.
	ErrInvalidTopCount = errors.New("invalid top count: must be non-negative")

	// ErrEmptyDBDir is returned when archiving is enabled without a database directory.
	ErrEmptyDBDir = errors.New("no database directory specified: set dbDir or use --no-save")
)
