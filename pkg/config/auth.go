package config

import "github.com/openclimdata/subgrib/pkg/auth"

// AuthConfig holds the authentication configuration for the archive. At most
// one of the variants should be set; the first non-nil one wins.
type AuthConfig struct {
	BasicAuth  *BasicAuth  `yaml:"basic,omitempty"`
	HeaderAuth *HeaderAuth `yaml:"header,omitempty"`
	BearerAuth *BearerAuth `yaml:"bearer,omitempty"`
}

// BasicAuth holds configuration for HTTP Basic Authentication.
type BasicAuth struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// HeaderAuth holds configuration for custom header-based authentication.
type HeaderAuth struct {
	Headers map[string]string `yaml:"headers"`
}

// BearerAuth holds configuration for Bearer token authentication.
type BearerAuth struct {
	Token string `yaml:"token"`
}

// ToAuthenticator converts the BasicAuth configuration to an Authenticator.
func (b *BasicAuth) ToAuthenticator() auth.Authenticator {
	return &auth.BasicAuth{
		Username: b.Username,
		Password: b.Password,
	}
}

// ToAuthenticator converts the HeaderAuth configuration to an Authenticator.
func (h *HeaderAuth) ToAuthenticator() auth.Authenticator {
	return &auth.HeaderAuth{
		Headers: h.Headers,
	}
}

// ToAuthenticator converts the BearerAuth configuration to an Authenticator.
func (b *BearerAuth) ToAuthenticator() auth.Authenticator {
	return &auth.BearerAuth{
		Token: b.Token,
	}
}

// Authenticator returns the configured archive authenticator, or nil when no
// authentication is configured.
func (c *Config) Authenticator() auth.Authenticator {
	if c.Auth == nil {
		return nil
	}
	switch {
	case c.Auth.BasicAuth != nil:
		return c.Auth.BasicAuth.ToAuthenticator()
	case c.Auth.HeaderAuth != nil:
		return c.Auth.HeaderAuth.ToAuthenticator()
	case c.Auth.BearerAuth != nil:
		return c.Auth.BearerAuth.ToAuthenticator()
	}
	return nil
}
