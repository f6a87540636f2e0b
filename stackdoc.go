// Package stackdoc turns web pages and natural-language tool descriptions
// into structured rich-text documents and keeps those documents in sync
// with a live editor and a persistent store.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, gemini/, gin/).
package stackdoc
