package forms

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/desertthunder/shopx/internal/models"
)

// Value holds a non-file field value. Only the member matching the field's [Kind] is meaningful.
type Value struct {
	Text   string
	Number *int64
	List   []string
}

// Text returns a text value.
func Text(s string) Value { return Value{Text: s} }

// Number returns a set number value.
func Number(n int64) Value { return Value{Number: &n} }

// List returns a list value holding a copy of items.
func List(items ...string) Value { return Value{List: slices.Clone(items)} }

// Record maps field names to values. A missing key reads as the zero [Value].
type Record map[string]Value

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v.clone()
	}
	return out
}

func (v Value) clone() Value {
	c := Value{Text: v.Text, List: slices.Clone(v.List)}
	if v.Number != nil {
		n := *v.Number
		c.Number = &n
	}
	return c
}

// equal compares two values under the diff rules for kind.
func equal(kind Kind, a, b Value) bool {
	switch kind {
	case TextField:
		return a.Text == b.Text
	case NumberField:
		if a.Number == nil || b.Number == nil {
			return a.Number == nil && b.Number == nil
		}
		return *a.Number == *b.Number
	case ListField:
		return slices.Equal(a.List, b.List)
	default:
		return true
	}
}

// formValues renders v as multipart values. An empty list is sent as a single empty value so a cleared list is
// still present in the body.
func formValues(kind Kind, v Value) []string {
	switch kind {
	case NumberField:
		if v.Number == nil {
			return []string{""}
		}
		return []string{strconv.FormatInt(*v.Number, 10)}
	case ListField:
		if len(v.List) == 0 {
			return []string{""}
		}
		return v.List
	default:
		return []string{v.Text}
	}
}

// jsonValue renders v for a JSON body. Cleared numbers encode as null and lists never encode as null.
func jsonValue(kind Kind, v Value) any {
	switch kind {
	case NumberField:
		if v.Number == nil {
			return nil
		}
		return *v.Number
	case ListField:
		if v.List == nil {
			return []string{}
		}
		return v.List
	default:
		return v.Text
	}
}

// Attachment is a file selected for upload. It is opened only while a request body is encoded, so a failed save
// can encode it again.
type Attachment struct {
	Filename string
	open     func() (io.ReadCloser, error)
}

// FileAttachment references the regular file at path.
func FileAttachment(path string) (Attachment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}
	if info.IsDir() {
		return Attachment{}, fmt.Errorf("attachment %s is a directory", path)
	}
	return Attachment{
		Filename: filepath.Base(path),
		open:     func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}

// BytesAttachment wraps in-memory content.
func BytesAttachment(filename string, data []byte) Attachment {
	return Attachment{
		Filename: filename,
		open:     func() (io.ReadCloser, error) { return io.NopCloser(bytes.NewReader(data)), nil },
	}
}

// Open returns a fresh reader over the attachment content.
func (a Attachment) Open() (io.ReadCloser, error) {
	if a.open == nil {
		return nil, fmt.Errorf("attachment %q has no content", a.Filename)
	}
	return a.open()
}

// VideoRecord converts a video into the record an edit session starts from.
func VideoRecord(v models.Video) Record {
	r := Record{
		"title":           Text(v.Title),
		"description":     Text(v.Description),
		"amazonLink":      Text(v.AmazonLink),
		"tags":            List(v.Tags...),
		"metaTitle":       Text(v.MetaTitle),
		"metaDescription": Text(v.MetaDescription),
		"metaKeywords":    List(v.MetaKeywords...),
	}
	if v.CategoryID != nil {
		r["categoryId"] = Number(*v.CategoryID)
	}
	return r
}

// CategoryRecord converts a category into the record an edit session starts from.
func CategoryRecord(c models.Category) Record {
	return Record{"name": Text(c.Name)}
}
