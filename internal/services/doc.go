// Package services defines the [Service] interface for list services and implements it for AniList and MyAnimeList.
//
// # Service Interface
//
// Both services expose the same authorization contract (AuthURL, Exchange, Refresh) and a
// FetchList that returns a [models.ListModel], so the reconciliation engine never sees either
// service's wire shape.
//
// # AniList Implementation
//
// [AniListService] is the reference service. Authorization is a plain authorization-code grant
// with a JSON token exchange; identity comes from a follow-up Viewer query. FetchList sends one
// MediaListCollection query and receives entries already grouped by status. Nullable fields
// such as idMal decode to nil.
//
// # MyAnimeList Implementation
//
// [MALService] is the target service and also implements [Updater]. Authorization adds a plain
// PKCE challenge and uses [oauth2.Config] for the form-encoded exchange and refresh grant.
// FetchList pages through the flat list and partitions it by each item's status.
//
// # Transport
//
// [APIClient] paces requests with a [rate.Limiter] and buffers every response as an
// [APIResponse], which is probed with gjson paths.
//
// # Error Handling
//
// Services use the typed errors from models:
//   - [models.TokenExchangeError] : code exchange or refresh rejected
//   - [models.AuthExpiredError] : 401 or "Invalid token"; re-authorize
//   - [models.FetchFailedError] : transport, decoding or status failure; no partial model
//   - [models.MutationError] : MyAnimeList error envelope on update
package services
