// Package server serves the media catalog over HTTP so a remote gallery can page through it.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [BasicRouter] mounts routes on an [http.ServeMux]. Middleware wraps only the routes mounted after
// it was added, and the first middleware added runs outermost. Single-method routes answer other
// methods with a JSON 405.
//
// # Endpoints
//
//   - GET /api/items?after=N&limit=M : one page of items with sequence > N, see services.PageResponse
//   - GET /api/items/{sequence} : a single item
//   - GET /healthz : liveness probe
//
// # Middleware
//
// [Logging] records method, path, status and duration through charm log. [Recover] turns handler
// panics into 500 responses. [BearerAuth] guards the API when a token is configured, matching the
// bearer client used by services.RemoteSource.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
