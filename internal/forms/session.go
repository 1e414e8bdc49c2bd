package forms

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/desertthunder/shopx/internal/shared"
)

var (
	ErrUnknownField = errors.New("unknown field")
	ErrFieldKind    = errors.New("field kind mismatch")
)

// ValidationError reports the required fields a create session is missing.
type ValidationError struct {
	Message string
	Missing []string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return shared.ErrValidation }

// Mode tells whether a session creates a new entity or edits an existing one.
type Mode int

const (
	CreateMode Mode = iota
	EditMode
)

// Session is the state of one open create or edit form.
type Session struct {
	schema   Schema
	mode     Mode
	id       int64
	original Record
	current  Record
	files    map[string]Attachment
}

// NewCreate starts a session for a new entity.
func NewCreate(schema Schema) *Session {
	return &Session{
		schema:  schema,
		mode:    CreateMode,
		current: Record{},
		files:   map[string]Attachment{},
	}
}

// NewEdit starts a session editing entity id. The current values start as a copy of original.
func NewEdit(schema Schema, id int64, original Record) *Session {
	if original == nil {
		original = Record{}
	}
	return &Session{
		schema:   schema,
		mode:     EditMode,
		id:       id,
		original: original.Clone(),
		current:  original.Clone(),
		files:    map[string]Attachment{},
	}
}

func (s *Session) Schema() Schema { return s.schema }
func (s *Session) Mode() Mode     { return s.mode }
func (s *Session) ID() int64      { return s.id }

// Value returns the current value of name.
func (s *Session) Value(name string) Value { return s.current[name].clone() }

// Attachment returns the file selected for name in this session.
func (s *Session) Attachment(name string) (Attachment, bool) {
	a, ok := s.files[name]
	return a, ok
}

func (s *Session) field(name string, kind Kind) (Field, error) {
	f, ok := s.schema.Field(name)
	if !ok {
		return Field{}, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, s.schema.Entity, name)
	}
	if f.Kind != kind {
		return Field{}, fmt.Errorf("%w: %s is a %s field, not %s", ErrFieldKind, name, f.Kind, kind)
	}
	return f, nil
}

// Set replaces the value of a non-file field.
func (s *Session) Set(name string, v Value) error {
	f, ok := s.schema.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", ErrUnknownField, s.schema.Entity, name)
	}
	if f.Kind == FileField {
		return fmt.Errorf("%w: %s is a file field, use Attach", ErrFieldKind, name)
	}
	s.current[name] = v.clone()
	return nil
}

func (s *Session) SetText(name, text string) error {
	if _, err := s.field(name, TextField); err != nil {
		return err
	}
	s.current[name] = Text(text)
	return nil
}

func (s *Session) SetNumber(name string, n int64) error {
	if _, err := s.field(name, NumberField); err != nil {
		return err
	}
	s.current[name] = Number(n)
	return nil
}

func (s *Session) ClearNumber(name string) error {
	if _, err := s.field(name, NumberField); err != nil {
		return err
	}
	s.current[name] = Value{}
	return nil
}

func (s *Session) SetList(name string, items []string) error {
	if _, err := s.field(name, ListField); err != nil {
		return err
	}
	s.current[name] = List(items...)
	return nil
}

// AddTag appends tag to a list field after trimming it. Empty and duplicate tags are ignored and report false.
func (s *Session) AddTag(name, tag string) (bool, error) {
	if _, err := s.field(name, ListField); err != nil {
		return false, err
	}
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false, nil
	}
	list := s.current[name].List
	if slices.Contains(list, tag) {
		return false, nil
	}
	s.current[name] = List(append(slices.Clone(list), tag)...)
	return true, nil
}

// RemoveTag removes tag from a list field.
func (s *Session) RemoveTag(name, tag string) error {
	if _, err := s.field(name, ListField); err != nil {
		return err
	}
	list := slices.DeleteFunc(slices.Clone(s.current[name].List), func(t string) bool { return t == tag })
	s.current[name] = Value{List: list}
	return nil
}

// PopTag removes and returns the last item of a list field, or "" when it is empty.
func (s *Session) PopTag(name string) (string, error) {
	if _, err := s.field(name, ListField); err != nil {
		return "", err
	}
	list := s.current[name].List
	if len(list) == 0 {
		return "", nil
	}
	last := list[len(list)-1]
	s.current[name] = List(list[:len(list)-1]...)
	return last, nil
}

// Attach selects a file for a file field, replacing any earlier selection.
func (s *Session) Attach(name string, a Attachment) error {
	if _, err := s.field(name, FileField); err != nil {
		return err
	}
	s.files[name] = a
	return nil
}

// Detach drops the file selected for name.
func (s *Session) Detach(name string) error {
	if _, err := s.field(name, FileField); err != nil {
		return err
	}
	delete(s.files, name)
	return nil
}

func (s *Session) present(f Field) bool {
	v := s.current[f.Name]
	switch f.Kind {
	case TextField:
		return strings.TrimSpace(v.Text) != ""
	case NumberField:
		return v.Number != nil
	case ListField:
		return len(v.List) > 0
	case FileField:
		_, ok := s.files[f.Name]
		return ok
	default:
		return false
	}
}

// Validate applies the required-field gate. Edit sessions always pass.
func (s *Session) Validate() error {
	if s.mode == EditMode {
		return nil
	}
	var missing []string
	for _, f := range s.schema.Fields {
		if f.Required && !s.present(f) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Message: s.schema.RequiredMessage, Missing: missing}
	}
	return nil
}

// Payload computes what a save sends. Create sessions are validated first.
func (s *Session) Payload() (*Payload, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	p := &Payload{entity: s.schema.Entity, mode: s.mode, id: s.id}
	for _, f := range s.schema.Fields {
		if f.Kind == FileField {
			if a, ok := s.files[f.Name]; ok {
				p.entries = append(p.entries, entry{field: f, file: &a})
			}
			continue
		}

		v := s.current[f.Name]
		switch s.mode {
		case CreateMode:
			if !s.present(f) && f.Fallback != "" {
				if fb, ok := s.schema.Field(f.Fallback); ok && fb.Kind == f.Kind && s.present(fb) {
					v = s.current[fb.Name]
				}
			}
			if v.isZero(f.Kind) {
				continue
			}
		case EditMode:
			if equal(f.Kind, v, s.original[f.Name]) {
				continue
			}
		}
		p.entries = append(p.entries, entry{field: f, value: v.clone()})
	}
	return p, nil
}

func (v Value) isZero(kind Kind) bool {
	switch kind {
	case TextField:
		return strings.TrimSpace(v.Text) == ""
	case NumberField:
		return v.Number == nil
	case ListField:
		return len(v.List) == 0
	default:
		return true
	}
}
