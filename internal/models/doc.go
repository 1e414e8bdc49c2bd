// Package models defines the catalog entities exchanged with the REST API and the records kept in the local client
// database.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): plain structs decoded from API responses
//   - [Video] : catalog video with tags, category reference and server-computed URLs
//   - [Category] : category with a display image
//   - [Page] : list envelope returned by paginated endpoints
//
// 2. Persistent Entities: records stored in the local SQLite database
//   - [Session] : the signed-in admin, stored as a JSON blob
//   - [Submission] : audit entry for each create, update or delete sent to the API
//
// [Submission] implements the Model interface. The Repository[T] interface defines standard access operations.
package models
