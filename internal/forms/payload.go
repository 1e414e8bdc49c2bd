package forms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
)

type entry struct {
	field Field
	value Value
	file  *Attachment
}

// Payload is the set of fields a save submits, in schema order. It is a snapshot: later edits to the session it
// came from do not change it.
type Payload struct {
	entity  string
	mode    Mode
	id      int64
	entries []entry
}

// Entity is the schema entity the payload was built for.
func (p *Payload) Entity() string { return p.entity }

// Mode is the session mode the payload was built in.
func (p *Payload) Mode() Mode { return p.mode }

// ID is the record id for edit payloads.
func (p *Payload) ID() int64 { return p.id }

// Empty reports whether there is nothing to send.
func (p *Payload) Empty() bool { return len(p.entries) == 0 }

// Multipart reports whether the payload carries a file and must be sent as multipart/form-data.
func (p *Payload) Multipart() bool {
	for _, e := range p.entries {
		if e.file != nil {
			return true
		}
	}
	return false
}

// Has reports whether field name is part of the payload.
func (p *Payload) Has(name string) bool {
	for _, e := range p.entries {
		if e.field.Name == name {
			return true
		}
	}
	return false
}

// Names lists the included fields in schema order.
func (p *Payload) Names() []string {
	names := make([]string, 0, len(p.entries))
	for _, e := range p.entries {
		names = append(names, e.field.Name)
	}
	return names
}

// Value returns the value submitted for a non-file field.
func (p *Payload) Value(name string) (Value, bool) {
	for _, e := range p.entries {
		if e.field.Name == name && e.file == nil {
			return e.value.clone(), true
		}
	}
	return Value{}, false
}

// Attachment returns the file submitted for name.
func (p *Payload) Attachment(name string) (Attachment, bool) {
	for _, e := range p.entries {
		if e.field.Name == name && e.file != nil {
			return *e.file, true
		}
	}
	return Attachment{}, false
}

// Preview maps each field to what is sent, with attachments shown by filename.
func (p *Payload) Preview() map[string]any {
	out := make(map[string]any, len(p.entries))
	for _, e := range p.entries {
		if e.file != nil {
			out[e.field.Name] = "@" + e.file.Filename
			continue
		}
		out[e.field.Name] = jsonValue(e.field.Kind, e.value)
	}
	return out
}

// JSON encodes the non-file fields as a JSON object.
func (p *Payload) JSON() ([]byte, error) {
	body := make(map[string]any, len(p.entries))
	for _, e := range p.entries {
		if e.file == nil {
			body[e.field.Name] = jsonValue(e.field.Kind, e.value)
		}
	}
	return json.Marshal(body)
}

// Encode builds a request body and its content type, multipart when a file is present and JSON otherwise.
//
// Attachments are reopened on every call.
func (p *Payload) Encode() (io.Reader, string, error) {
	if !p.Multipart() {
		data, err := p.JSON()
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode JSON body: %w", err)
		}
		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, e := range p.entries {
		if e.file != nil {
			if err := writeFile(w, e.field.Name, *e.file); err != nil {
				return nil, "", err
			}
			continue
		}
		for _, v := range formValues(e.field.Kind, e.value) {
			if err := w.WriteField(e.field.Name, v); err != nil {
				return nil, "", fmt.Errorf("failed to write field %s: %w", e.field.Name, err)
			}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFile(w *multipart.Writer, name string, a Attachment) error {
	r, err := a.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer r.Close()

	part, err := w.CreateFormFile(name, a.Filename)
	if err != nil {
		return fmt.Errorf("failed to create form file %s: %w", name, err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("failed to copy %s: %w", name, err)
	}
	return nil
}
