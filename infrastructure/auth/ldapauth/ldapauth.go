// Package ldapauth verifies user credentials against a directory server:
// an administrator bind locates the user's distinguished name from a search
// template, then a bind as that DN proves the password.
package ldapauth

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-ldap/ldap/v3"
)

const (
	// DefaultUserField is the attribute matched against the login name.
	DefaultUserField = "sAMAccountName"
	// DefaultSearchTemplate locates a person entry by user field.
	DefaultSearchTemplate = "(&(objectClass=person)({user_field}={0}))"
)

var (
	ErrUserNotFound            = errors.New("ldap: user not found")
	ErrInvalidCredentials      = errors.New("ldap: invalid credentials")
	ErrInvalidAdminCredentials = errors.New("ldap: invalid administrator credentials")
)

// UserData is the directory entry of an authenticated user.
type UserData struct {
	DN         string
	Attributes map[string][]string
}

// Attr returns the first value of an attribute, or empty.
func (u UserData) Attr(name string) string {
	if vs := u.Attributes[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

// Authenticator holds the parsed connection settings. The DSN format is
//
//	ldaps://<ADMIN_DN>:<PASS>@<HOST>/<SEARCH_DN>?user_field=...#<TEMPLATE>
//
// where the query string parameters feed the search template and the
// fragment overrides the default template. Plain ldap:// skips TLS.
type Authenticator struct {
	URL            string
	SearchDN       string
	AdminDN        string
	AdminPassword  string
	SearchTemplate string
	Query          map[string]string

	// dial is swapped by tests.
	dial func() (Conn, error)
}

// Conn is the subset of the LDAP connection used here.
type Conn interface {
	Bind(username, password string) error
	Search(*ldap.SearchRequest) (*ldap.SearchResult, error)
	Close() error
}

// New parses a DSN into an authenticator.
func New(dsn string) (*Authenticator, error) {
	parsed, err := url.Parse(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse ldap dsn: %w", err)
	}
	if parsed.User == nil {
		return nil, errors.New("ldap dsn is missing administrator credentials")
	}
	pass, _ := parsed.User.Password()

	query := map[string]string{"user_field": DefaultUserField}
	for k, vs := range parsed.Query() {
		if len(vs) > 0 {
			query[k] = vs[0]
		} else {
			query[k] = ""
		}
	}
	template := DefaultSearchTemplate
	if parsed.Fragment != "" {
		template = parsed.Fragment
	}

	a := &Authenticator{
		URL:            fmt.Sprintf("%s://%s", parsed.Scheme, parsed.Hostname()),
		SearchDN:       strings.TrimPrefix(parsed.EscapedPath(), "/"),
		AdminDN:        parsed.User.Username(),
		AdminPassword:  pass,
		SearchTemplate: template,
		Query:          query,
	}
	if unescaped, err := url.PathUnescape(a.SearchDN); err == nil {
		a.SearchDN = unescaped
	}
	a.dial = a.dialLDAP
	return a, nil
}

func (a *Authenticator) dialLDAP() (Conn, error) {
	// Certificate pinning is still pending; mirror the permissive policy of
	// the deployment this replaces.
	return ldap.DialURL(a.URL,
		ldap.DialWithTLSConfig(&tls.Config{InsecureSkipVerify: true}))
}

// Filter renders the search template for a login name, escaping it per
// RFC 4515 and substituting the DSN query parameters.
func (a *Authenticator) Filter(user string) string {
	filter := strings.ReplaceAll(a.SearchTemplate, "{0}", ldap.EscapeFilter(user))
	for k, v := range a.Query {
		filter = strings.ReplaceAll(filter, "{"+k+"}", v)
	}
	return filter
}

// GetUserData looks up the user's entry with the administrator account.
func (a *Authenticator) GetUserData(user string) (UserData, error) {
	conn, err := a.dial()
	if err != nil {
		return UserData{}, fmt.Errorf("ldap dial: %w", err)
	}
	defer conn.Close()

	if err := conn.Bind(a.AdminDN, a.AdminPassword); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return UserData{}, ErrInvalidAdminCredentials
		}
		return UserData{}, fmt.Errorf("ldap admin bind: %w", err)
	}

	result, err := conn.Search(ldap.NewSearchRequest(
		a.SearchDN,
		ldap.ScopeSingleLevel, ldap.NeverDerefAliases, 0, 0, false,
		a.Filter(user),
		nil, nil,
	))
	if err != nil {
		return UserData{}, fmt.Errorf("ldap search: %w", err)
	}
	if len(result.Entries) == 0 {
		return UserData{}, ErrUserNotFound
	}

	entry := result.Entries[0]
	attrs := make(map[string][]string, len(entry.Attributes))
	for _, attr := range entry.Attributes {
		attrs[attr.Name] = attr.Values
	}
	return UserData{DN: entry.DN, Attributes: attrs}, nil
}

// Authenticate verifies the user's password by binding as the DN found for
// the login name and returns the directory entry on success.
func (a *Authenticator) Authenticate(user, password string) (UserData, error) {
	data, err := a.GetUserData(user)
	if err != nil {
		return UserData{}, err
	}

	conn, err := a.dial()
	if err != nil {
		return UserData{}, fmt.Errorf("ldap dial: %w", err)
	}
	defer conn.Close()

	if err := conn.Bind(data.DN, password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return UserData{}, ErrInvalidCredentials
		}
		return UserData{}, fmt.Errorf("ldap user bind: %w", err)
	}
	return data, nil
}
