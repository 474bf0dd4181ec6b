// AniList implementation of [Service]
//
// API reference: https://docs.anilist.co
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
	"github.com/desertthunder/lsx/internal/vocabulary"
)

const (
	anilistAuthURL  = "https://anilist.co/api/v2/oauth/authorize"
	anilistTokenURL = "https://anilist.co/api/v2/oauth/token"
	anilistGraphQL  = "https://graphql.anilist.co"
)

const viewerQuery = `query { Viewer { id name } }`

// collectionQuery requests the whole list grouped by status in one round trip.
const collectionQuery = `query ($userId: Int, $type: MediaType) {
  MediaListCollection(userId: $userId, type: $type) {
    lists {
      name
      isCustomList
      status
      entries {
        status
        score(format: POINT_10_DECIMAL)
        progress
        media {
          id
          idMal
          format
          episodes
          chapters
          title { userPreferred }
        }
      }
    }
  }
}`

// AniListMedia is the media object attached to a list entry. Nullable fields decode to nil.
type AniListMedia struct {
	ID       int    `json:"id"`
	IDMal    *int   `json:"idMal"`
	Format   string `json:"format"`
	Episodes *int   `json:"episodes"`
	Chapters *int   `json:"chapters"`
	Title    struct {
		UserPreferred string `json:"userPreferred"`
	} `json:"title"`
}

// AniListEntry is one MediaList item.
type AniListEntry struct {
	Status   models.Status `json:"status"`
	Score    *float64      `json:"score"`
	Progress *int          `json:"progress"`
	Media    AniListMedia  `json:"media"`
}

// AniListGroup is one MediaListGroup. Custom lists duplicate entries from status lists.
type AniListGroup struct {
	Name         string         `json:"name"`
	IsCustomList bool           `json:"isCustomList"`
	Status       *models.Status `json:"status"`
	Entries      []AniListEntry `json:"entries"`
}

type collectionResponse struct {
	Data struct {
		MediaListCollection *struct {
			Lists []AniListGroup `json:"lists"`
		} `json:"MediaListCollection"`
	} `json:"data"`
}

// AniListViewer is the authenticated user.
type AniListViewer struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// AniListService implements [Service] for AniList. It is the reference service.
type AniListService struct {
	creds     shared.ClientConfig
	endpoints Endpoints
	api       *APIClient
}

// NewAniListService creates an AniList client for the registered OAuth client.
func NewAniListService(creds shared.ClientConfig, api *APIClient, opts ...Option) (*AniListService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: anilist client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: anilist client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = "http://localhost:5000/anilist"
	}
	if api == nil {
		api = NewAPIClient(nil, 0)
	}

	return &AniListService{
		creds:     creds,
		api:       api,
		endpoints: applyOptions(Endpoints{AuthURL: anilistAuthURL, TokenURL: anilistTokenURL, APIURL: anilistGraphQL}, opts),
	}, nil
}

func (s *AniListService) Name() models.ServiceName { return models.AniList }

// UsesPKCE is false: AniList uses a plain authorization-code grant.
func (s *AniListService) UsesPKCE() bool { return false }

// AuthURL returns the authorization URL. AniList takes no verifier.
func (s *AniListService) AuthURL(string) string {
	q := url.Values{}
	q.Set("client_id", s.creds.ClientID)
	q.Set("redirect_uri", s.creds.RedirectURI)
	q.Set("response_type", "code")
	return s.endpoints.AuthURL + "?" + q.Encode()
}

// Exchange performs the JSON token exchange, then a Viewer query for identity, since the token
// endpoint does not return it.
func (s *AniListService) Exchange(ctx context.Context, code, _ string) (*models.Session, error) {
	session, err := s.token(ctx, map[string]string{
		"grant_type":    "authorization_code",
		"client_id":     s.creds.ClientID,
		"client_secret": s.creds.ClientSecret,
		"redirect_uri":  s.creds.RedirectURI,
		"code":          code,
	})
	if err != nil {
		return nil, err
	}
	session.Code = code

	viewer, err := s.Viewer(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to identify user: %w", err)
	}
	session.UserID = viewer.ID
	session.UserName = viewer.Name
	return session, nil
}

// Refresh uses the refresh grant. AniList issues long-lived tokens and usually no refresh token.
func (s *AniListService) Refresh(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session == nil || session.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	refreshed, err := s.token(ctx, map[string]string{
		"grant_type":    "refresh_token",
		"client_id":     s.creds.ClientID,
		"client_secret": s.creds.ClientSecret,
		"refresh_token": session.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	refreshed.Code = session.Code
	refreshed.UserID = session.UserID
	refreshed.UserName = session.UserName
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = session.RefreshToken
	}
	return refreshed, nil
}

func (s *AniListService) token(ctx context.Context, body map[string]string) (*models.Session, error) {
	resp, err := s.api.PostJSON(ctx, s.endpoints.TokenURL, nil, body)
	if err != nil {
		return nil, &models.TokenExchangeError{Service: models.AniList, Payload: err.Error()}
	}
	if !resp.OK() || !resp.Get("access_token").Exists() {
		return nil, &models.TokenExchangeError{Service: models.AniList, StatusCode: resp.StatusCode, Payload: truncate(resp.Body, 512)}
	}

	var session models.Session
	if err := resp.Decode(&session); err != nil {
		return nil, &models.TokenExchangeError{Service: models.AniList, StatusCode: resp.StatusCode, Payload: err.Error()}
	}
	return &session, nil
}

// Viewer returns the authenticated user.
func (s *AniListService) Viewer(ctx context.Context, session *models.Session) (*AniListViewer, error) {
	var out struct {
		Data struct {
			Viewer *AniListViewer `json:"Viewer"`
		} `json:"data"`
	}
	if err := s.graphql(ctx, session, viewerQuery, nil, &out); err != nil {
		return nil, err
	}
	if out.Data.Viewer == nil {
		return nil, fmt.Errorf("%w: empty Viewer", shared.ErrUnexpectedResponse)
	}
	return out.Data.Viewer, nil
}

// FetchList retrieves the collection for the session's user and partitions it by entry status.
//
// Custom lists are skipped because their entries also appear under their status list.
func (s *AniListService) FetchList(ctx context.Context, session *models.Session, kind models.MediaKind) (*models.ListModel, error) {
	vars := map[string]any{"userId": session.UserID, "type": kind.GraphQLType()}

	var out collectionResponse
	if err := s.graphql(ctx, session, collectionQuery, vars, &out); err != nil {
		return nil, fetchError(models.AniList, err)
	}
	if out.Data.MediaListCollection == nil {
		return nil, &models.FetchFailedError{Service: models.AniList, Cause: fmt.Errorf("%w: no MediaListCollection", shared.ErrUnexpectedResponse)}
	}

	model := models.NewListModel(models.AniList, kind)
	model.User = models.User{ID: session.UserID, Name: session.UserName}

	for _, group := range out.Data.MediaListCollection.Lists {
		if group.IsCustomList {
			continue
		}
		if group.Status != nil {
			if !vocabulary.Known(models.AniList, *group.Status, kind) {
				return nil, &models.FetchFailedError{Service: models.AniList, Cause: &models.UnmappedStatusError{Status: *group.Status, Kind: kind}}
			}
			model.Observe(*group.Status)
		}
		for _, e := range group.Entries {
			if !vocabulary.Known(models.AniList, e.Status, kind) {
				return nil, &models.FetchFailedError{Service: models.AniList, Cause: &models.UnmappedStatusError{Status: e.Status, Kind: kind}}
			}
			model.Add(e.normalize(kind))
		}
	}
	return model, nil
}

func (e AniListEntry) normalize(kind models.MediaKind) models.Entry {
	entry := models.Entry{
		ID:         e.Media.ID,
		CrossRefID: e.Media.IDMal,
		Title:      e.Media.Title.UserPreferred,
		Status:     e.Status,
		Progress:   e.Progress,
		Format:     e.Media.Format,
		Total:      e.Media.Episodes,
		Repeating:  e.Status == models.StatusRepeating,
	}
	if kind == models.Chaptered {
		entry.Total = e.Media.Chapters
	}
	// AniList reports an unscored entry as 0.
	if e.Score != nil && *e.Score > 0 {
		entry.Score = e.Score
	}
	return entry
}

// graphql posts a query and decodes data into out. A 401 or an "Invalid token" error is reported
// as [models.AuthExpiredError].
func (s *AniListService) graphql(ctx context.Context, session *models.Session, query string, vars map[string]any, out any) error {
	body := map[string]any{"query": query}
	if vars != nil {
		body["variables"] = vars
	}

	resp, err := s.api.PostJSON(ctx, s.endpoints.APIURL, session, body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return &models.AuthExpiredError{Service: models.AniList}
	}
	if errs := resp.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		for _, e := range errs.Array() {
			if e.Get("status").Int() == http.StatusUnauthorized || strings.EqualFold(e.Get("message").String(), "invalid token") {
				return &models.AuthExpiredError{Service: models.AniList}
			}
		}
		return fmt.Errorf("%w: %s", shared.ErrAPIRequest, errs.Get("0.message").String())
	}
	if !resp.OK() {
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, truncate(resp.Body, 256))
	}
	return resp.Decode(out)
}

// fetchError keeps auth expiry distinct and wraps everything else as a fetch failure.
func fetchError(service models.ServiceName, err error) error {
	if errors.Is(err, models.ErrAuthExpired) || errors.Is(err, models.ErrFetchFailed) {
		return err
	}
	return &models.FetchFailedError{Service: service, Cause: err}
}
