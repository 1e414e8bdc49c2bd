// Package services talks to the catalog REST API and checks admin logins.
//
// # Catalog Interface
//
// [Catalog] lists, creates, updates and deletes videos and categories. [CatalogService] implements it over
// [APIService], which adds an X-Request-ID header to every request and, when a token is configured, a bearer
// token through an [oauth2.StaticTokenSource] client built by [NewHTTPClient].
//
// Write operations take a [forms.Payload] and send it as multipart/form-data when it carries a file and as JSON
// otherwise.
//
// # Error Handling
//
// Failed requests return an [*APIError] whose message is readable by a person:
//   - a JSON string body is used as is
//   - a JSON object body contributes its "message" member
//   - a plain-text body is trimmed and used
//   - otherwise "Request failed with status code N"
//   - transport failures carry the transport error message
//
// Every [*APIError] matches [shared.ErrAPIRequest]; 404 responses also match [shared.ErrNotFound].
//
// # Authentication
//
// [ConfigAuthenticator] implements [Authenticator] by comparing against the configured credentials in plaintext.
// It is a convenience gate, not a security boundary.
package services
