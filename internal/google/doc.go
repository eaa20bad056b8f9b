// Package google handles OAuth2 authentication against Google for the
// calendar API: the authorization-code flow, and an injected in-process
// token store that backs a self-refreshing token source.
package google
