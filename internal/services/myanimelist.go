// MyAnimeList implementation of [Service] and [Updater]
//
// API reference: https://myanimelist.net/apiconfig/references/api/v2
package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/oauth2"

	"github.com/desertthunder/lsx/internal/models"
	"github.com/desertthunder/lsx/internal/shared"
	"github.com/desertthunder/lsx/internal/vocabulary"
)

const (
	malAuthURL  = "https://myanimelist.net/v1/oauth2/authorize"
	malTokenURL = "https://myanimelist.net/v1/oauth2/token"
	malBaseURL  = "https://api.myanimelist.net/v2"
)

// DefaultPageSize is the MyAnimeList maximum list page size.
const DefaultPageSize = 1000

// MALNode is the media object of a list item.
type MALNode struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	MediaType   string `json:"media_type"`
	NumEpisodes *int   `json:"num_episodes"`
	NumChapters *int   `json:"num_chapters"`
}

// MALListStatus is the user's status for one item. Field names differ by kind.
type MALListStatus struct {
	Status             models.Status `json:"status"`
	Score              *int          `json:"score"`
	NumEpisodesWatched *int          `json:"num_episodes_watched"`
	NumChaptersRead    *int          `json:"num_chapters_read"`
	IsRewatching       bool          `json:"is_rewatching"`
	IsRereading        bool          `json:"is_rereading"`
}

// MALListItem is one item of a flat list page.
type MALListItem struct {
	Node       MALNode       `json:"node"`
	ListStatus MALListStatus `json:"list_status"`
}

type malListPage struct {
	Data   []MALListItem `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

// MALService implements [Updater] for MyAnimeList. It is the target service.
type MALService struct {
	config    *oauth2.Config
	endpoints Endpoints
	api       *APIClient
	pageSize  int
}

// NewMALService creates a MyAnimeList client for the registered OAuth client.
func NewMALService(creds shared.ClientConfig, api *APIClient, pageSize int, opts ...Option) (*MALService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: myanimelist client_id", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		creds.RedirectURI = "http://localhost:5000/myanimelist"
	}
	if api == nil {
		api = NewAPIClient(nil, 0)
	}
	if pageSize <= 0 || pageSize > DefaultPageSize {
		pageSize = DefaultPageSize
	}

	endpoints := applyOptions(Endpoints{AuthURL: malAuthURL, TokenURL: malTokenURL, APIURL: malBaseURL}, opts)

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Endpoint: oauth2.Endpoint{
			AuthURL:   endpoints.AuthURL,
			TokenURL:  endpoints.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}

	return &MALService{config: config, endpoints: endpoints, api: api, pageSize: pageSize}, nil
}

func (s *MALService) Name() models.ServiceName { return models.MyAnimeList }

// UsesPKCE is true. MyAnimeList only supports the plain challenge method.
func (s *MALService) UsesPKCE() bool { return true }

// AuthURL returns the authorization URL with the verifier as a plain challenge.
func (s *MALService) AuthURL(verifier string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", s.config.ClientID)
	q.Set("redirect_uri", s.config.RedirectURL)
	q.Set("code_challenge", verifier)
	q.Set("code_challenge_method", "plain")
	return s.endpoints.AuthURL + "?" + q.Encode()
}

// oauthContext routes oauth2's token requests through the shared HTTP client.
func (s *MALService) oauthContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.api.HTTPClient())
}

// Exchange performs the form-encoded code exchange with the PKCE verifier.
func (s *MALService) Exchange(ctx context.Context, code, verifier string) (*models.Session, error) {
	token, err := s.config.Exchange(s.oauthContext(ctx), code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, tokenError(err)
	}

	session := sessionFromToken(token)
	session.Code = code
	session.PKCE = verifier
	return session, nil
}

// Refresh uses the refresh grant through [oauth2.Config.TokenSource].
func (s *MALService) Refresh(ctx context.Context, session *models.Session) (*models.Session, error) {
	if session == nil || session.RefreshToken == "" {
		return nil, shared.ErrNoRefreshToken
	}

	// Without an access token the source always takes the refresh path.
	token, err := s.config.TokenSource(s.oauthContext(ctx), &oauth2.Token{RefreshToken: session.RefreshToken}).Token()
	if err != nil {
		return nil, tokenError(err)
	}

	refreshed := sessionFromToken(token)
	refreshed.Code = session.Code
	refreshed.PKCE = session.PKCE
	refreshed.UserID = session.UserID
	refreshed.UserName = session.UserName
	return refreshed, nil
}

func sessionFromToken(token *oauth2.Token) *models.Session {
	expiresIn := token.ExpiresIn
	if expiresIn == 0 {
		if v, ok := token.Extra("expires_in").(float64); ok {
			expiresIn = int64(v)
		}
	}
	return &models.Session{
		TokenType:    token.TokenType,
		ExpiresIn:    expiresIn,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
}

func tokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &models.TokenExchangeError{Service: models.MyAnimeList, StatusCode: status, Payload: truncate(re.Body, 512)}
	}
	return &models.TokenExchangeError{Service: models.MyAnimeList, Payload: err.Error()}
}

func listPath(kind models.MediaKind) string {
	if kind == models.Chaptered {
		return "mangalist"
	}
	return "animelist"
}

// FetchList retrieves the flat list for kind, following pagination, and partitions it by each
// item's own status.
func (s *MALService) FetchList(ctx context.Context, session *models.Session, kind models.MediaKind) (*models.ListModel, error) {
	fields := "list_status,media_type,num_episodes"
	if kind == models.Chaptered {
		fields = "list_status,media_type,num_chapters"
	}

	q := url.Values{}
	q.Set("fields", fields)
	q.Set("limit", strconv.Itoa(s.pageSize))
	q.Set("nsfw", "true")
	next := fmt.Sprintf("%s/users/@me/%s?%s", s.endpoints.APIURL, listPath(kind), q.Encode())

	model := models.NewListModel(models.MyAnimeList, kind)
	model.User = models.User{ID: session.UserID, Name: session.UserName}

	for next != "" {
		resp, err := s.api.Get(ctx, next, session)
		if err != nil {
			return nil, &models.FetchFailedError{Service: models.MyAnimeList, Cause: err}
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return nil, &models.AuthExpiredError{Service: models.MyAnimeList}
		}
		if !resp.OK() {
			return nil, &models.FetchFailedError{
				Service: models.MyAnimeList,
				Cause:   fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, truncate(resp.Body, 256)),
			}
		}

		var page malListPage
		if err := resp.Decode(&page); err != nil {
			return nil, &models.FetchFailedError{Service: models.MyAnimeList, Cause: err}
		}

		for _, item := range page.Data {
			if !vocabulary.Known(models.MyAnimeList, item.ListStatus.Status, kind) {
				return nil, &models.FetchFailedError{
					Service: models.MyAnimeList,
					Cause:   &models.UnmappedStatusError{Status: item.ListStatus.Status, Kind: kind},
				}
			}
			model.Add(item.normalize(kind))
		}
		next = page.Paging.Next
	}
	return model, nil
}

func (i MALListItem) normalize(kind models.MediaKind) models.Entry {
	entry := models.Entry{
		ID:        i.Node.ID,
		Title:     i.Node.Title,
		Status:    i.ListStatus.Status,
		Format:    i.Node.MediaType,
		Progress:  i.ListStatus.NumEpisodesWatched,
		Total:     i.Node.NumEpisodes,
		Repeating: i.ListStatus.IsRewatching,
	}
	if kind == models.Chaptered {
		entry.Progress = i.ListStatus.NumChaptersRead
		entry.Total = i.Node.NumChapters
		entry.Repeating = i.ListStatus.IsRereading
	}
	if i.ListStatus.Score != nil && *i.ListStatus.Score > 0 {
		entry.Score = models.Ptr(float64(*i.ListStatus.Score))
	}
	return entry
}

// UpdateForm encodes an action as the my_list_status body for its media kind.
func UpdateForm(action models.ProposedAction) url.Values {
	form := url.Values{}
	form.Set("status", string(action.Status))
	form.Set("score", strconv.Itoa(action.Score))

	progressField, repeatField := "num_watched_episodes", "is_rewatching"
	if action.MediaKind == models.Chaptered {
		progressField, repeatField = "num_chapters_read", "is_rereading"
	}
	form.Set(progressField, strconv.Itoa(action.Progress))
	if action.Repeating {
		form.Set(repeatField, "true")
	}
	return form
}

// Apply writes one action with PATCH /{anime|manga}/{id}/my_list_status. The same call creates a
// missing entry, so create and update differ only in which id keys them.
//
// A 401 is [models.AuthExpiredError]. Otherwise only a parseable {"error": ..., "message": ...}
// envelope is a failure. Any other response, including a non-JSON body, counts as success:
// MyAnimeList signals success by the absence of an error envelope.
func (s *MALService) Apply(ctx context.Context, session *models.Session, action models.ProposedAction) error {
	if action.Kind == models.NoOp {
		return nil
	}

	segment := "anime"
	if action.MediaKind == models.Chaptered {
		segment = "manga"
	}
	endpoint := fmt.Sprintf("%s/%s/%d/my_list_status", s.endpoints.APIURL, segment, action.ID)

	resp, err := s.api.PatchForm(ctx, endpoint, session, UpdateForm(action))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	if resp.StatusCode == http.StatusUnauthorized {
		return &models.AuthExpiredError{Service: models.MyAnimeList}
	}

	if resp.IsJSON() {
		if code := resp.Get("error"); code.Exists() && code.String() != "" {
			return &models.MutationError{Code: code.String(), Message: resp.Get("message").String()}
		}
	}
	return nil
}
