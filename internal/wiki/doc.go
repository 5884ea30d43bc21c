// Package wiki is a small MediaWiki Action API client that provides exactly
// what the harvester needs: category member listing, page fetching with
// plain-text sections, and parent category lookup.
//
// # Requests
//
// All requests are GET requests with format=json and formatversion=2.
// Continuation ("continue" objects) is followed transparently, so callers
// always receive complete results.
//
// # Redirects
//
// The client never follows redirects. Fetching a redirect page returns
// ErrRedirect so that the caller decides what to do with it.
//
// # Sections
//
// Page text is requested through the TextExtracts extension as plain text
// with wiki-style headings ("== Title =="). The text is split into sections
// at every heading; a section's body runs until the next heading of any
// level. Text before the first heading is not part of any section.
//
// # Usage
//
//	httpClient, err := wiki.NewHTTPClient(wiki.TransportOptions{Timeout: time.Minute})
//	client, err := wiki.NewClient("https://proofwiki.org/w/api.php", wiki.WithHTTPClient(httpClient))
//	titles, err := client.CategoryMembers(ctx, "Definitions/Algebra", 100, model.MemberPage)
package wiki
