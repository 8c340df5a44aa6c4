package gd

import (
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

// IM protocol URIs.
const (
	ProtocolAIM        = parsable.NSGData + "#AIM"
	ProtocolMSN        = parsable.NSGData + "#MSN"
	ProtocolYahoo      = parsable.NSGData + "#YAHOO"
	ProtocolSkype      = parsable.NSGData + "#SKYPE"
	ProtocolQQ         = parsable.NSGData + "#QQ"
	ProtocolGoogleTalk = parsable.NSGData + "#GOOGLE_TALK"
	ProtocolICQ        = parsable.NSGData + "#ICQ"
	ProtocolJabber     = parsable.NSGData + "#JABBER"
)

// IMAddress is a gd:im instant messaging address.
type IMAddress struct {
	parsable.Parsable

	Address  string // required
	Protocol string
	Rel      string
	Label    string
	Primary  bool
}

// NewIMAddress creates an IM address with the given address and protocol.
func NewIMAddress(address, protocol string) *IMAddress {
	return &IMAddress{Address: address, Protocol: protocol}
}

// ElementName implements parsable.XMLParsable.
func (i *IMAddress) ElementName() (string, string) { return "gd", "im" }

// Namespaces implements parsable.XMLParsable.
func (i *IMAddress) Namespaces(ns map[string]string) { namespaces(ns) }

// PreParseXML reads the address's attributes.
func (i *IMAddress) PreParseXML(root *parsable.XMLNode) error {
	address, err := parsable.RequiredAttr(root, "address")
	if err != nil {
		return err
	}
	i.Address = address
	i.Protocol = root.Attr("protocol")
	i.Rel = root.Attr("rel")
	i.Label = root.Attr("label")
	primary, err := parsable.BoolAttr(root, "primary", parsable.None)
	if err != nil {
		return err
	}
	i.Primary = primary
	return nil
}

// PreEmitXML implements parsable.XMLParsable.
func (i *IMAddress) PreEmitXML(w *parsable.XMLWriter) {
	w.Attr("address", i.Address)
	w.OptionalAttr("protocol", i.Protocol)
	w.OptionalAttr("rel", i.Rel)
	w.OptionalAttr("label", i.Label)
	w.BoolAttr("primary", i.Primary)
}
