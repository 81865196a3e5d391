// Package auth decorates outgoing HTTP requests with credentials. Most
// archive mirrors are anonymous, but institutional ones sit behind basic
// auth, static API-key headers or bearer tokens; each scheme is a small
// value type applied per request.
package auth

import "net/http"

// Type names a credential scheme, matching the keys used in the config
// file's auth block.
type Type string

const (
	BasicAuthType  Type = "basic"
	HeaderAuthType Type = "header"
	BearerAuthType Type = "bearer"
)

// Authenticator mutates a request to carry credentials. Apply is called
// once per outgoing request, before it is sent.
type Authenticator interface {
	Apply(req *http.Request) error
	Type() Type
}

// BasicAuth sends a username/password pair with every request.
type BasicAuth struct {
	Username string
	Password string
}

func (b BasicAuth) Apply(req *http.Request) error {
	req.SetBasicAuth(b.Username, b.Password)
	return nil
}

func (b BasicAuth) Type() Type { return BasicAuthType }

// HeaderAuth sets fixed headers on every request, for mirrors keyed on
// API-key style headers.
type HeaderAuth struct {
	Headers map[string]string
}

func (h HeaderAuth) Apply(req *http.Request) error {
	for k, v := range h.Headers {
		req.Header.Set(k, v)
	}
	return nil
}

func (h HeaderAuth) Type() Type { return HeaderAuthType }

// BearerAuth sends an OAuth-style token in the Authorization header.
type BearerAuth struct {
	Token string
}

func (b BearerAuth) Apply(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+b.Token)
	return nil
}

func (b BearerAuth) Type() Type { return BearerAuthType }
