package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/shopx/internal/forms"
	"github.com/desertthunder/shopx/internal/models"
	"github.com/desertthunder/shopx/internal/shared"
)

var fieldLabels = map[string]string{
	"title":           "Title",
	"description":     "Description",
	"amazonLink":      "Amazon link",
	"tags":            "Tags",
	"categoryId":      "Category ID",
	"metaTitle":       "Meta title",
	"metaDescription": "Meta description",
	"metaKeywords":    "Meta keywords",
	"video":           "Video file",
	"thumbnail":       "Thumbnail file",
	"name":            "Name",
	"image":           "Image file",
}

func fieldLabel(name string) string {
	if l, ok := fieldLabels[name]; ok {
		return l
	}
	return name
}

// formInput is the editor for one schema field. Description fields use a textarea, everything else a single line.
type formInput struct {
	field     forms.Field
	text      textinput.Model
	area      textarea.Model
	multiline bool
}

func (in *formInput) focus() tea.Cmd {
	if in.multiline {
		return in.area.Focus()
	}
	return in.text.Focus()
}

func (in *formInput) blur() {
	if in.multiline {
		in.area.Blur()
		return
	}
	in.text.Blur()
}

func (in *formInput) value() string {
	if in.multiline {
		return in.area.Value()
	}
	return in.text.Value()
}

// formModel edits a [forms.Session]. Tags are committed to the session as they are entered; every other field is
// copied into the session by sync when the form is submitted.
type formModel struct {
	session *forms.Session
	inputs  []formInput
	focused int
	cats    []models.Category
	err     string
	missing map[string]bool
}

func newForm(s *forms.Session, cats []models.Category, width int) *formModel {
	f := &formModel{session: s, cats: cats, missing: map[string]bool{}}
	inputWidth := max(20, min(width-6, 72))

	for _, field := range s.Schema().Fields {
		in := formInput{field: field}
		current := s.Value(field.Name)

		if field.Name == "description" {
			in.multiline = true
			in.area = textarea.New()
			in.area.ShowLineNumbers = false
			in.area.SetWidth(inputWidth)
			in.area.SetHeight(4)
			in.area.SetValue(current.Text)
		} else {
			in.text = textinput.New()
			in.text.Prompt = "> "
			in.text.Width = inputWidth
			switch field.Kind {
			case forms.TextField:
				in.text.SetValue(current.Text)
			case forms.NumberField:
				if current.Number != nil {
					in.text.SetValue(strconv.FormatInt(*current.Number, 10))
				}
			case forms.ListField:
				in.text.Placeholder = "type and press enter"
			case forms.FileField:
				in.text.Placeholder = "path/to/file"
			}
		}
		f.inputs = append(f.inputs, in)
	}
	return f
}

func (f *formModel) init() tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	return f.inputs[f.focused].focus()
}

// move shifts focus by delta fields, wrapping around.
func (f *formModel) move(delta int) tea.Cmd {
	if len(f.inputs) == 0 {
		return nil
	}
	f.inputs[f.focused].blur()
	f.focused = (f.focused + delta + len(f.inputs)) % len(f.inputs)
	return f.inputs[f.focused].focus()
}

func (f *formModel) current() *formInput {
	return &f.inputs[f.focused]
}

// update handles a key for the focused input. Enter or comma commits a tag in list fields and backspace on an
// empty tag input removes the last tag.
func (f *formModel) update(msg tea.KeyMsg) tea.Cmd {
	in := f.current()

	if in.field.Kind == forms.ListField {
		switch msg.String() {
		case "enter", ",":
			f.commitTag(in)
			return nil
		case "backspace":
			if in.text.Value() == "" {
				f.popTag(in)
				return nil
			}
		}
	} else if !in.multiline && msg.String() == "enter" {
		return f.move(1)
	}

	var cmd tea.Cmd
	if in.multiline {
		in.area, cmd = in.area.Update(msg)
	} else {
		in.text, cmd = in.text.Update(msg)
	}
	return cmd
}

func (f *formModel) commitTag(in *formInput) {
	if _, err := f.session.AddTag(in.field.Name, in.text.Value()); err != nil {
		f.err = err.Error()
		return
	}
	in.text.SetValue("")
}

// popTag removes the last tag of the focused list field.
func (f *formModel) popTag(in *formInput) {
	if _, err := f.session.PopTag(in.field.Name); err != nil {
		f.err = err.Error()
	}
}

// sync copies the input values into the session. Pending tag text is committed as a tag.
func (f *formModel) sync() error {
	for i := range f.inputs {
		in := &f.inputs[i]
		name := in.field.Name
		raw := strings.TrimSpace(in.value())

		var err error
		switch in.field.Kind {
		case forms.TextField:
			err = f.session.SetText(name, in.value())
		case forms.NumberField:
			if raw == "" {
				err = f.session.ClearNumber(name)
				break
			}
			n, perr := strconv.ParseInt(raw, 10, 64)
			if perr != nil {
				return fmt.Errorf("%w: %s must be a number", shared.ErrInvalidInput, fieldLabel(name))
			}
			err = f.session.SetNumber(name, n)
		case forms.ListField:
			if raw != "" {
				f.commitTag(in)
			}
		case forms.FileField:
			if raw == "" {
				err = f.session.Detach(name)
				break
			}
			a, aerr := forms.FileAttachment(raw)
			if aerr != nil {
				return fmt.Errorf("%s: %w", fieldLabel(name), aerr)
			}
			err = f.session.Attach(name, a)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// fail shows err under the form. Validation errors also mark the missing fields.
func (f *formModel) fail(err error) {
	f.err = err.Error()
	f.missing = map[string]bool{}

	var verr *forms.ValidationError
	if errors.As(err, &verr) {
		for _, name := range verr.Missing {
			f.missing[name] = true
		}
	}
}

func (f *formModel) title() string {
	entity := f.session.Schema().Entity
	if f.session.Mode() == forms.EditMode {
		return fmt.Sprintf("Edit %s #%d", entity, f.session.ID())
	}
	return fmt.Sprintf("New %s", entity)
}

func (f *formModel) view() string {
	var b strings.Builder

	b.WriteString(styles.title.Render(f.title()))
	b.WriteString("\n")

	for i, in := range f.inputs {
		label := fieldLabel(in.field.Name)
		if in.field.Required && f.session.Mode() == forms.CreateMode {
			label += " *"
		}
		switch {
		case f.missing[in.field.Name]:
			label = styles.err.Render(label)
		case i == f.focused:
			label = styles.selected.Render(label)
		default:
			label = styles.label.Render(label)
		}
		b.WriteString(label + "\n")

		if in.field.Kind == forms.ListField {
			if chips := f.chips(in.field.Name); chips != "" {
				b.WriteString(chips + "\n")
			}
		}

		if in.multiline {
			b.WriteString(in.area.View())
		} else {
			b.WriteString(in.text.View())
		}
		b.WriteString("\n")

		if hint := f.hint(in.field); hint != "" {
			b.WriteString(styles.help.Render(hint) + "\n")
		}
	}

	if f.err != "" {
		b.WriteString("\n" + styles.err.Render(f.err) + "\n")
	}
	return b.String()
}

func (f *formModel) chips(name string) string {
	tags := f.session.Value(name).List
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = styles.chip.Render(t)
	}
	return strings.Join(out, " ")
}

func (f *formModel) hint(field forms.Field) string {
	switch {
	case field.Kind == forms.NumberField && len(f.cats) > 0:
		names := make([]string, len(f.cats))
		for i, c := range f.cats {
			names[i] = fmt.Sprintf("%d %s", c.ID, c.Name)
		}
		return strings.Join(names, " · ")
	case field.Kind == forms.FileField && f.session.Mode() == forms.EditMode:
		return "leave empty to keep the current file"
	case field.Fallback != "":
		return fmt.Sprintf("defaults to %s when empty", strings.ToLower(fieldLabel(field.Fallback)))
	default:
		return ""
	}
}
