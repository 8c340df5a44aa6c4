package parsable

// XML namespaces used across the GData protocol family.
const (
	// NSAtom is the Atom Syndication Format namespace.
	NSAtom = "http://www.w3.org/2005/Atom"

	// NSApp is the Atom Publishing Protocol namespace.
	NSApp = "http://www.w3.org/2007/app"

	// NSOpenSearch is the OpenSearch 1.1 namespace used for feed pagination
	// metadata.
	NSOpenSearch = "http://a9.com/-/spec/opensearch/1.1/"

	// NSGData is the GData core namespace (gd: prefix).
	NSGData = "http://schemas.google.com/g/2005"

	// NSBatch is the batch operation namespace (batch: prefix).
	NSBatch = "http://schemas.google.com/gdata/batch"

	// NSGAcl is the access-control namespace (gAcl: prefix).
	NSGAcl = "http://schemas.google.com/acl/2007"

	// NSGContact is the contacts extension namespace (gContact: prefix).
	NSGContact = "http://schemas.google.com/contact/2008"

	// NSGCal is the calendar extension namespace (gCal: prefix).
	NSGCal = "http://schemas.google.com/gCal/2005"
)

// Content types an entity may declare for its payloads.
const (
	ContentTypeAtomXML = "application/atom+xml"
	ContentTypeJSON    = "application/json"
)
