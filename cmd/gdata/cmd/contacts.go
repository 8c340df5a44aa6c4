package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	gdata "github.com/GNOME/libgdata-sub004"
	"github.com/GNOME/libgdata-sub004/pkg/services/contacts"
)

// contactsCmd groups the contacts commands.
var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Access the contacts service",
}

var contactsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the authenticated user's contacts",
	RunE:  runContactsList,
}

var contactsListQuery string

func init() {
	contactsListCmd.Flags().StringVar(&contactsListQuery, "query", "", "restrict the listing to matching contacts")
	contactsCmd.AddCommand(contactsListCmd)
	rootCmd.AddCommand(contactsCmd)
}

func runContactsList(cmd *cobra.Command, args []string) error {
	authorizer, err := newAuthorizer(true)
	if err != nil {
		return err
	}
	service, err := contacts.NewService(gdata.WithAuthorizer(authorizer))
	if err != nil {
		return err
	}

	var q *contacts.Query
	if contactsListQuery != "" {
		q = contacts.NewQuery(contactsListQuery)
	}
	feed, err := service.QueryContacts(cmd.Context(), q, nil)
	if err != nil {
		return err
	}

	l := listing{Columns: []string{"name", "email", "phone", "groups"}}
	for _, entry := range feed.Entries {
		contact, ok := entry.(*contacts.Contact)
		if !ok {
			continue
		}
		row := map[string]string{"name": contact.Title}
		if email := contact.PrimaryEmail(); email != nil {
			row["email"] = email.Address
		}
		if len(contact.Phones) > 0 {
			row["phone"] = contact.Phones[0].Number
		}
		var groups []string
		for _, g := range contact.Groups {
			if !g.Deleted {
				groups = append(groups, g.GroupURI)
			}
		}
		row["groups"] = strings.Join(groups, ", ")
		l.Rows = append(l.Rows, row)
	}
	return formatListing(cmd.OutOrStdout(), viper.GetString("output"), l)
}
