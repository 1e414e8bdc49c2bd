// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [StateRepository] : key/value rows in client_state, the local analogue of browser storage
//   - [SessionStore] : the signed-in session as a JSON blob under [SessionKey]
//   - [ViewPreference] : the last chosen video list mode under [ViewModeKey]
//   - [SubmissionRepository] : audit trail of writes sent to the catalog API
//
// Stores are constructed with a *sql.DB and passed to the components that need them; nothing reads state globally.
package repositories
