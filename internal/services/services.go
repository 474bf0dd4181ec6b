// package services defines interface Service for the two list services
//
// AniList (GraphQL), MyAnimeList (REST)
package services

import (
	"context"

	"github.com/desertthunder/lsx/internal/models"
)

// Service is one list service: authorization endpoints plus a complete list fetch.
type Service interface {
	// Name identifies the service.
	Name() models.ServiceName

	// UsesPKCE reports whether the authorization flow needs a proof-key verifier.
	UsesPKCE() bool

	// AuthURL builds the authorization URL. It performs no I/O. verifier is ignored by services
	// without PKCE support.
	AuthURL(verifier string) string

	// Exchange trades an authorization code for a session. Rejections are reported as
	// [models.TokenExchangeError] carrying the upstream payload.
	Exchange(ctx context.Context, code, verifier string) (*models.Session, error)

	// Refresh trades the session's refresh token for a new session.
	Refresh(ctx context.Context, session *models.Session) (*models.Session, error)

	// FetchList retrieves the complete list for kind. Transport and decoding failures are
	// [models.FetchFailedError]; a rejected token is [models.AuthExpiredError].
	FetchList(ctx context.Context, session *models.Session, kind models.MediaKind) (*models.ListModel, error)
}

// Updater is a service that accepts list mutations.
type Updater interface {
	Service

	// Apply writes one action. A structured error envelope is returned as [models.MutationError].
	Apply(ctx context.Context, session *models.Session, action models.ProposedAction) error
}

// Endpoints locates a service's authorization, token and API URLs.
type Endpoints struct {
	AuthURL  string
	TokenURL string
	APIURL   string
}

// Option adjusts a service at construction.
type Option func(*Endpoints)

// WithEndpoints replaces any non-empty endpoint.
func WithEndpoints(e Endpoints) Option {
	return func(dst *Endpoints) {
		if e.AuthURL != "" {
			dst.AuthURL = e.AuthURL
		}
		if e.TokenURL != "" {
			dst.TokenURL = e.TokenURL
		}
		if e.APIURL != "" {
			dst.APIURL = e.APIURL
		}
	}
}

func applyOptions(e Endpoints, opts []Option) Endpoints {
	for _, opt := range opts {
		opt(&e)
	}
	return e
}
