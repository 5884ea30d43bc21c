// Package model defines the data structures shared by the harvester, the
// wiki client, the reporters and the run archive.
//
// This package contains the following main types:
//   - Page: A fetched wiki page with its categories and plain-text sections
//   - Section: One named section of a page
//   - MemberKind: The kind of category member to list (pages or subcategories)
//   - RunReport: The summary of a harvest run, ready for reporting and export
package model
