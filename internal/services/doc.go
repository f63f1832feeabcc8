// Package services implements the HTTP side of item loading.
//
// # API Client
//
// [APIService] performs raw requests against a mosaic server and decodes JSON responses. A bearer
// token, when configured, is attached through an [oauth2.Client] built from a static token source.
//
// # Remote Source
//
// [RemoteSource] implements gallery.Source on top of [APIService]. It walks [ItemsPath] with an
// "after" cursor and a page limit, and paces requests with a [rate.Limiter] so a fast scroll cannot
// flood the server.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : transport failure or non-2xx status
//   - [shared.ErrSourceUnavailable] : wraps any failed page load
//
// A failed load leaves the cursor untouched, so the next call retries the same page.
package services
