package wiki

import "errors"

// Wiki client errors.
// Callers use errors.Is to tell skippable page conditions apart from
// transport failures.
var (
	// ErrRedirect is returned when a fetched page is a redirect.
	ErrRedirect = errors.New("page is a redirect")

	// ErrMissingPage is returned when a page does not exist.
	ErrMissingPage = errors.New("page does not exist")

	// ErrInvalidTitle is returned when the wiki rejects a title as invalid.
	ErrInvalidTitle = errors.New("invalid page title")

	// ErrAPI is returned when the API answers with an error object.
	ErrAPI = errors.New("wiki API error")

	// ErrHTTPStatus is returned for non-200 HTTP responses.
	ErrHTTPStatus = errors.New("unexpected HTTP status")

	// ErrInvalidEndpoint is returned when the API URL cannot be used.
	ErrInvalidEndpoint = errors.New("invalid API endpoint: expected an absolute http(s) URL")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

// isMissing reports whether err means the requested page does not exist.
func isMissing(err error) bool {
	return errors.Is(err, ErrMissingPage)
}
