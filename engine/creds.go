package engine

import (
	"github.com/go-git/go-git/v5/plumbing/transport"

	"workdeck/logutils"
)

// CredentialProvider supplies authentication for git network operations.
// Returning a nil AuthMethod means "proceed anonymously"; returning an error
// declines the operation's credentials without failing it.
type CredentialProvider interface {
	Credentials(remoteURL string) (transport.AuthMethod, error)
}

// AnonymousCredentials is the default provider: every remote is accessed with
// the transport's default (anonymous) credentials.
type AnonymousCredentials struct{}

func (AnonymousCredentials) Credentials(string) (transport.AuthMethod, error) {
	return nil, nil
}

func (e *Engine) auth(remoteURL string) transport.AuthMethod {
	if e.creds == nil {
		return nil
	}
	auth, err := e.creds.Credentials(remoteURL)
	if err != nil {
		logutils.Log.WithError(err).WithField("remote", remoteURL).
			Debug("credential provider declined, proceeding anonymously")
		return nil
	}
	return auth
}
