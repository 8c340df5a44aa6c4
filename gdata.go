// Package gdata is a client library for the GData protocol family:
// Atom-based feeds of typed entries, extended with Google's gd, batch
// and gAcl namespaces, plus the JSON variants newer services speak.
//
// The library is layered: pkg/parsable handles serialization with
// unknown-content preservation, pkg/atom and pkg/gd define the common
// entry vocabulary, pkg/query builds feed URIs, and pkg/auth signs
// requests. This package ties them together in Service, which issues
// queries and entry CRUD against a service's feeds, batches operations,
// and streams media uploads and downloads.
//
// Example usage:
//
//	authorizer := auth.NewOAuth2Authorizer(clientID, clientSecret,
//		auth.OutOfBandRedirectURI, contacts.AuthorizationDomains())
//	// ... send the user to authorizer.AuthorizationURL, exchange the code ...
//
//	svc := contacts.NewService(gdata.WithAuthorizer(authorizer))
//	feed, err := svc.QueryContacts(ctx, contacts.NewQuery("smith"), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, contact := range feed.Entries {
//		fmt.Println(contact.EntryBase().Title)
//	}
package gdata

// Version is the library version, reported in the User-Agent header.
const Version = "0.1.0"

// defaultProtocolVersion is the GData-Version header value used when a
// service does not declare its own.
const defaultProtocolVersion = "2"
