// Package forms implements edit sessions for catalog entities and the field diff that decides what a save sends.
//
// # Schemas
//
// A [Schema] lists an entity's fields in submission order. Each [Field] has a [Kind] (text, number, list or file)
// and a required flag. [VideoSchema] and [CategorySchema] describe the two catalog entities.
//
// # Sessions
//
// A [Session] is created for one open form:
//   - [NewCreate] : no original snapshot, every field with a value is submitted
//   - [NewEdit] : holds the original [Record], only changed fields are submitted
//
// Create sessions pass a required-field gate before a payload is built; failures return a [*ValidationError]
// and nothing is sent. Edit sessions have no gate.
//
// # Diff Rules
//
// In edit mode a field is part of the [Payload] when:
//   - text: current differs from original, with an absent value read as ""
//   - number: values differ, two unset values are equal
//   - list: the ordered sequences differ, so reordering counts as a change
//   - file: an attachment was selected in this session
//
// An absent field means "no change" to the API, never "clear".
//
// # Encoding
//
// [Payload.Encode] produces multipart/form-data whenever a file is present (lists become repeated keys) and a JSON
// object otherwise (lists become arrays).
package forms
