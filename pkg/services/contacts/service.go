package contacts

import (
	"context"
	"strings"

	gdata "github.com/GNOME/libgdata-sub004"
	"github.com/GNOME/libgdata-sub004/pkg/atom"
	"github.com/GNOME/libgdata-sub004/pkg/auth"
)

// Feed URIs of the contacts service.
const (
	ContactsFeedURI = "https://www.google.com/m8/feeds/contacts/default/full"
	GroupsFeedURI   = "https://www.google.com/m8/feeds/groups/default/full"
)

// contactsDomain is the service's sole authorization domain.
var contactsDomain = &auth.Domain{
	ServiceName: "cp",
	Scope:       "https://www.google.com/m8/feeds/",
}

// AuthorizationDomains returns the domains an authorizer needs to
// cover for this service.
func AuthorizationDomains() []*auth.Domain {
	return []*auth.Domain{contactsDomain}
}

// Service accesses the contacts service.
type Service struct {
	*gdata.Service
}

// NewService creates a contacts service. The GData-Version header is
// pinned to the feed revision the entry model matches.
func NewService(opts ...gdata.Option) (*Service, error) {
	base, err := gdata.NewService(append([]gdata.Option{gdata.WithProtocolVersion("3")}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Service{Service: base}, nil
}

func contactFactory() atom.EntryLike { return &Contact{} }

func groupFactory() atom.EntryLike { return &Group{} }

// QueryContacts fetches the authenticated user's contacts restricted
// by q, which may be nil.
func (s *Service) QueryContacts(ctx context.Context, q *Query, progress gdata.ProgressFunc) (*atom.Feed, error) {
	if q == nil {
		return s.QueryFeed(ctx, contactsDomain, ContactsFeedURI, nil, contactFactory, progress)
	}
	return s.QueryFeed(ctx, contactsDomain, ContactsFeedURI, q, contactFactory, progress)
}

// QueryGroups fetches the user's contact groups.
func (s *Service) QueryGroups(ctx context.Context, q *Query, progress gdata.ProgressFunc) (*atom.Feed, error) {
	if q == nil {
		return s.QueryFeed(ctx, contactsDomain, GroupsFeedURI, nil, groupFactory, progress)
	}
	return s.QueryFeed(ctx, contactsDomain, GroupsFeedURI, q, groupFactory, progress)
}

// GetContact fetches one contact by its id URI.
func (s *Service) GetContact(ctx context.Context, uri string) (*Contact, error) {
	entry, err := s.GetEntry(ctx, contactsDomain, uri, "", contactFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*Contact), nil
}

// InsertContact creates contact, returning the server's copy.
func (s *Service) InsertContact(ctx context.Context, contact *Contact) (*Contact, error) {
	entry, err := s.InsertEntry(ctx, contactsDomain, ContactsFeedURI, contact, contactFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*Contact), nil
}

// UpdateContact writes contact back, guarded by its ETag.
func (s *Service) UpdateContact(ctx context.Context, contact *Contact) (*Contact, error) {
	entry, err := s.UpdateEntry(ctx, contactsDomain, contact, contactFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*Contact), nil
}

// DeleteContact removes contact.
func (s *Service) DeleteContact(ctx context.Context, contact *Contact) error {
	return s.DeleteEntry(ctx, contactsDomain, contact)
}

// InsertGroup creates group.
func (s *Service) InsertGroup(ctx context.Context, group *Group) (*Group, error) {
	entry, err := s.InsertEntry(ctx, contactsDomain, GroupsFeedURI, group, groupFactory)
	if err != nil {
		return nil, err
	}
	return entry.(*Group), nil
}

// BatchFeedURI implements gdata.Batchable.
func (s *Service) BatchFeedURI() string {
	return ContactsFeedURI + "/batch"
}

// SupportsBatchOperation implements gdata.Batchable. The contacts feed
// accepts every operation kind.
func (s *Service) SupportsBatchOperation(atom.BatchOperationType) bool {
	return true
}

// NewBatch starts a batch against the contacts feed.
func (s *Service) NewBatch() *gdata.BatchOperation {
	return s.Service.NewBatch(contactsDomain, s)
}

// EntryURI converts a contact id as it appears in feed entries into
// the URI the full projection of the entry lives at, for batched
// queries.
func EntryURI(id string) string {
	return strings.Replace(id, "/base/", "/full/", 1)
}
