package config

import (
	"net"
	"net/url"
	"strconv"
)

// DSN builds the PostgreSQL connection URL from the discrete config fields.
func (c *Config) DSN() string {
	return c.buildDSN(c.Password)
}

// Redacted renders the connection URL with the password masked, for logs.
func (c *Config) Redacted() string {
	if c.Password == "" {
		return c.buildDSN("")
	}

	return c.buildDSN("***")
}

func (c *Config) buildDSN(password string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Database,
	}

	if c.User != "" {
		if password != "" {
			u.User = url.UserPassword(c.User, password)
		} else {
			u.User = url.User(c.User)
		}
	}

	return u.String()
}
