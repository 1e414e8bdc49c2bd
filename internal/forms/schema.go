package forms

// Kind is the value shape of a form field.
type Kind int

const (
	TextField Kind = iota
	NumberField
	ListField
	FileField
)

func (k Kind) String() string {
	switch k {
	case TextField:
		return "text"
	case NumberField:
		return "number"
	case ListField:
		return "list"
	case FileField:
		return "file"
	default:
		return "unknown"
	}
}

// Field describes one entity field.
//
// Fallback names a list field whose value is copied into this one on create when this one is left empty.
type Field struct {
	Name     string
	Kind     Kind
	Required bool
	Fallback string
}

// Schema is the ordered field set of an entity.
type Schema struct {
	Entity string
	Fields []Field
	// RequiredMessage is the user-facing error when the create gate fails.
	RequiredMessage string
}

// Field returns the field called name.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required returns the names of required fields in schema order.
func (s Schema) Required() []string {
	var names []string
	for _, f := range s.Fields {
		if f.Required {
			names = append(names, f.Name)
		}
	}
	return names
}

var VideoSchema = Schema{
	Entity: "video",
	Fields: []Field{
		{Name: "title", Kind: TextField, Required: true},
		{Name: "description", Kind: TextField, Required: true},
		{Name: "amazonLink", Kind: TextField, Required: true},
		{Name: "tags", Kind: ListField, Required: true},
		{Name: "categoryId", Kind: NumberField, Required: true},
		{Name: "metaTitle", Kind: TextField},
		{Name: "metaDescription", Kind: TextField},
		{Name: "metaKeywords", Kind: ListField, Fallback: "tags"},
		{Name: "video", Kind: FileField, Required: true},
		{Name: "thumbnail", Kind: FileField, Required: true},
	},
	RequiredMessage: "Please fill all required fields",
}

var CategorySchema = Schema{
	Entity: "category",
	Fields: []Field{
		{Name: "name", Kind: TextField, Required: true},
		{Name: "image", Kind: FileField, Required: true},
	},
	RequiredMessage: "Name and image are required",
}
