package acl_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GNOME/libgdata-sub004/pkg/acl"
	"github.com/GNOME/libgdata-sub004/pkg/errors"
	"github.com/GNOME/libgdata-sub004/pkg/parsable"
)

const sampleRuleXML = `<?xml version='1.0' encoding='UTF-8'?>
<entry xmlns='http://www.w3.org/2005/Atom' xmlns:gAcl='http://schemas.google.com/acl/2007'>
	<id>http://example.com/acls/1</id>
	<category scheme='http://schemas.google.com/g/2005#kind' term='http://schemas.google.com/acl/2007#accessRule'/>
	<gAcl:role value='writer'/>
	<gAcl:scope type='user' value='anna@example.com'/>
</entry>`

func TestRuleParseXML(t *testing.T) {
	var r acl.Rule
	require.NoError(t, parsable.FromXML([]byte(sampleRuleXML), &r))

	assert.Equal(t, "writer", r.Role)
	assert.Equal(t, acl.ScopeUser, r.ScopeType)
	assert.Equal(t, "anna@example.com", r.ScopeValue)
}

func TestRuleParseXMLScopeValidation(t *testing.T) {
	tests := []struct {
		name    string
		scope   string
		wantErr bool
	}{
		{"user scope needs value", `<gAcl:scope type='user'/>`, true},
		{"default scope needs none", `<gAcl:scope type='default'/>`, false},
		{"scope needs type", `<gAcl:scope value='x'/>`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := `<entry xmlns:gAcl='http://schemas.google.com/acl/2007'>` +
				`<id>http://example.com/acls/1</id>` + tt.scope + `</entry>`
			err := parsable.FromXML([]byte(input), &acl.Rule{})
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRuleEmitXML(t *testing.T) {
	r := acl.NewRule("writer", acl.ScopeUser, "anna@example.com")
	out := parsable.ToXML(r)

	assert.Contains(t, out, "xmlns:gAcl='http://schemas.google.com/acl/2007'")
	assert.Contains(t, out, "<gAcl:role value='writer'/>")
	assert.Contains(t, out, "<gAcl:scope type='user' value='anna@example.com'/>")
	assert.Contains(t, out, "term='http://schemas.google.com/acl/2007#accessRule'")
}

func TestRuleEmitXMLDefaultScopeOmitsValue(t *testing.T) {
	r := acl.NewRule(acl.RoleNone, acl.ScopeDefault, "")
	out := parsable.ToXML(r)
	assert.Contains(t, out, "<gAcl:scope type='default'/>")
}

func TestRuleParseJSON(t *testing.T) {
	input := `{
		"kind": "calendar#aclRule",
		"id": "user:anna@example.com",
		"etag": "\"rule-etag\"",
		"role": "writer",
		"scope": {"type": "user", "value": "anna@example.com"},
		"extra": {"keep": true}
	}`

	var r acl.Rule
	require.NoError(t, parsable.FromJSON([]byte(input), &r))

	assert.Equal(t, "user:anna@example.com", r.ID)
	assert.Equal(t, `"rule-etag"`, r.ETag)
	assert.Equal(t, "writer", r.Role)
	assert.Equal(t, acl.ScopeUser, r.ScopeType)
	assert.Equal(t, "anna@example.com", r.ScopeValue)

	// The unknown member survives re-emission byte-for-byte.
	out, err := parsable.ToJSON(&r)
	require.NoError(t, err)
	var emitted map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &emitted))
	assert.JSONEq(t, `{"keep": true}`, string(emitted["extra"]))
}

func TestRuleParseJSONMissingScope(t *testing.T) {
	err := parsable.FromJSON([]byte(`{"role":"none"}`), &acl.Rule{})
	require.Error(t, err)
	assert.True(t, errors.IsParseError(err))
}

func TestRuleParseJSONMissingRole(t *testing.T) {
	err := parsable.FromJSON([]byte(`{"scope":{"type":"default"}}`), &acl.Rule{})
	assert.Error(t, err)
}

func TestRuleEmitJSON(t *testing.T) {
	r := acl.NewRule("reader", acl.ScopeDomain, "example.com")
	out, err := parsable.ToJSON(r)
	require.NoError(t, err)

	assert.JSONEq(t, `{"role":"reader","scope":{"type":"domain","value":"example.com"}}`, string(out))
}
