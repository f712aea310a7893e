// Package harvest collects long-form article text, in-body images and
// videos from arbitrary news pages given only a title and a URL, and
// persists the result so text mining can run offline.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, excel/).
package harvest
