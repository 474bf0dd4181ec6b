// Package server provides HTTP routing, middleware, and the one-shot redirect listener used by authorization.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support. [BasicRouter] uses
// [http.ServeMux] internally with method filtering. [Middleware] added first runs outermost.
//
// # Redirect Handler
//
// [RedirectHandler] accepts exactly one authorization redirect carrying a code query parameter
// and delivers it on a channel. Later requests are refused so a replayed redirect cannot
// overwrite the first.
//
// # Listener
//
// [Listen] binds the socket synchronously and serves in a goroutine. [Listener.Await] is the
// single bounded wait: it returns on the redirect, a server error, cancellation, or timeout.
// [AwaitRedirect] scopes the listener so it is shut down on every exit path.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
