package cma

// FieldType is the value type of a content type field.
type FieldType string

const (
	FieldTypeSymbol   FieldType = "Symbol"
	FieldTypeText     FieldType = "Text"
	FieldTypeRichText FieldType = "RichText"
	FieldTypeInteger  FieldType = "Integer"
	FieldTypeNumber   FieldType = "Number"
	FieldTypeDate     FieldType = "Date"
	FieldTypeBoolean  FieldType = "Boolean"
	FieldTypeObject   FieldType = "Object"
	FieldTypeLocation FieldType = "Location"
	FieldTypeLink     FieldType = "Link"
	FieldTypeArray    FieldType = "Array"
)

// Status is the publication state of a content type.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Sys carries the system metadata the management API attaches to every
// resource.
type Sys struct {
	ID               string `json:"id,omitempty"`
	Type             string `json:"type,omitempty"`
	Version          int    `json:"version,omitempty"`
	PublishedVersion int    `json:"publishedVersion,omitempty"`
	PublishedAt      string `json:"publishedAt,omitempty"`
}

// Field is a single typed field of a content type.
type Field struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required"`
}

// ContentType is a named structural definition stored in a space.
type ContentType struct {
	Sys          Sys     `json:"sys"`
	Name         string  `json:"name"`
	Description  string  `json:"description,omitempty"`
	DisplayField string  `json:"displayField,omitempty"`
	Fields       []Field `json:"fields"`
}

// Status reports draft until the content type has been published at least
// once.
func (c ContentType) Status() Status {
	if c.Sys.PublishedVersion > 0 {
		return StatusPublished
	}
	return StatusDraft
}

// IsPublishedAtCurrentVersion reports whether the latest version of c is the
// published one. The API bumps the version by one on publish.
func (c ContentType) IsPublishedAtCurrentVersion() bool {
	return c.Sys.PublishedVersion > 0 && c.Sys.Version == c.Sys.PublishedVersion+1
}

// contentTypeCollection is the paginated envelope returned by list calls.
type contentTypeCollection struct {
	Total int           `json:"total"`
	Skip  int           `json:"skip"`
	Limit int           `json:"limit"`
	Items []ContentType `json:"items"`
}

// errorBody is the JSON body of a non-2xx management API response.
type errorBody struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}
