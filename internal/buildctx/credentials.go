package buildctx

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	oerrors "github.com/opmodel/ship/internal/errors"
)

// credentialEnvPrefix is followed by the upper-cased credential id.
const credentialEnvPrefix = "SHIP_CREDENTIAL_"

// Credential is an already resolved username/password pair.
type Credential struct {
	Username string
	Password string
}

// Credentials maps credential ids to credentials. It is populated before
// tasks run and only read afterwards.
type Credentials struct {
	mu    sync.RWMutex
	items map[string]Credential
}

// NewCredentials returns an empty store.
func NewCredentials() *Credentials {
	return &Credentials{items: make(map[string]Credential)}
}

// Set stores a credential under id, replacing any previous value.
func (c *Credentials) Set(id string, cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[id] = cred
}

// Get returns the credential stored under id.
func (c *Credentials) Get(id string) (Credential, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cred, ok := c.items[id]
	if !ok {
		return Credential{}, &oerrors.DetailError{
			Type:    "missing configuration",
			Message: fmt.Sprintf("credential %q is not available", id),
			Hint:    fmt.Sprintf("Set %s and %s", envName(id, "USERNAME"), envName(id, "PASSWORD")),
			Cause:   oerrors.ErrMissingConfiguration,
		}
	}
	return cred, nil
}

// IDs returns the stored ids in sorted order.
func (c *Credentials) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	ids := make([]string, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CredentialsFromEnv returns a store holding the named credentials found in
// the environment.
func CredentialsFromEnv(ids ...string) *Credentials {
	creds := NewCredentials()
	creds.LoadEnv(ids...)
	return creds
}

// LoadEnv reads the named credentials from SHIP_CREDENTIAL_<ID>_USERNAME and
// SHIP_CREDENTIAL_<ID>_PASSWORD. Ids without a password are skipped.
func (c *Credentials) LoadEnv(ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		password := os.Getenv(envName(id, "PASSWORD"))
		if password == "" {
			continue
		}
		c.Set(id, Credential{
			Username: os.Getenv(envName(id, "USERNAME")),
			Password: password,
		})
	}
}

func envName(id, suffix string) string {
	var sb strings.Builder
	sb.WriteString(credentialEnvPrefix)
	for _, r := range strings.ToUpper(id) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		} else {
			sb.WriteRune('_')
		}
	}
	sb.WriteString("_")
	sb.WriteString(suffix)
	return sb.String()
}
