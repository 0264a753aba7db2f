package formschema

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/dmitrijs2005/formvault/internal/common"
)

// Field types with kind-specific payloads.
const (
	TypeImage       = "image"
	TypeFile        = "file"
	TypeImageUpload = "image-upload"
)

// DefaultImageAccepts is used for image-upload fields that list no MIME types.
var DefaultImageAccepts = []string{"image/png", "image/jpeg", "image/webp"}

// Option is one selectable value of a select/checkbox/radio field.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Condition matches when the submitted value of Field equals Equals.
type Condition struct {
	Field  string `json:"field"`
	Equals any    `json:"equals"`
}

// ConditionalGroup narrows a field's options while When matches.
type ConditionalGroup struct {
	When    Condition `json:"when"`
	Options []Option  `json:"options"`
}

// ImageSpec is the payload of display-only image fields.
type ImageSpec struct {
	ImageURL    string
	DisplayOnly bool
}

// UploadSpec is the payload of file and image-upload fields.
type UploadSpec struct {
	Accepts  []string
	Multiple bool
}

// Field is one input definition of a form.
//
// The base attributes apply to every type. Image is set only for TypeImage
// and Upload only for TypeFile/TypeImageUpload. Extra holds attributes this
// package does not model; they are written back unchanged.
type Field struct {
	ID                string
	Type              string
	Label             string
	Required          bool
	Placeholder       string
	DefaultValue      any
	Options           []Option
	ConditionalGroups []ConditionalGroup

	Image  *ImageSpec
	Upload *UploadSpec

	Extra map[string]any
}

// IsDisplayOnly reports whether the field collects no input.
func (f Field) IsDisplayOnly() bool {
	return f.Image != nil && f.Image.DisplayOnly
}

// ActiveOptions returns the options of the first conditional group whose
// condition matches data, or the full option list when none does.
func (f Field) ActiveOptions(data map[string]any) []Option {
	for _, g := range f.ConditionalGroups {
		if g.When.Field == "" {
			continue
		}
		if v, ok := data[g.When.Field]; ok && SameJSON(v, g.When.Equals) {
			return g.Options
		}
	}
	return f.Options
}

// Clone returns a deep copy of f.
func (f Field) Clone() Field {
	out := f
	out.DefaultValue = CloneValue(f.DefaultValue)
	if f.Options != nil {
		out.Options = append([]Option(nil), f.Options...)
	}
	if f.ConditionalGroups != nil {
		out.ConditionalGroups = make([]ConditionalGroup, len(f.ConditionalGroups))
		for i, g := range f.ConditionalGroups {
			g.When.Equals = CloneValue(g.When.Equals)
			if g.Options != nil {
				g.Options = append([]Option(nil), g.Options...)
			}
			out.ConditionalGroups[i] = g
		}
	}
	if f.Image != nil {
		img := *f.Image
		out.Image = &img
	}
	if f.Upload != nil {
		up := UploadSpec{Accepts: append([]string{}, f.Upload.Accepts...), Multiple: f.Upload.Multiple}
		out.Upload = &up
	}
	out.Extra = CloneMap(f.Extra)
	return out
}

// kindKeys are attributes owned by a kind payload. On other kinds they are
// ordinary unknown attributes.
var kindKeys = map[string]struct{}{
	"imageUrl":    {},
	"displayOnly": {},
	"accepts":     {},
	"multiple":    {},
}

// NormalizeField builds the canonical Field for a raw field record.
//
// Image fields are forced display-only and optional with a string imageUrl.
// File and image-upload fields get accepts as a list of trimmed MIME types
// (a comma separated string is split; image-upload defaults to
// DefaultImageAccepts) and multiple as a bool.
func NormalizeField(raw map[string]any) (Field, bool) {
	f := Field{}
	extra := make(map[string]any)
	kind := make(map[string]any)

	for k, v := range raw {
		switch k {
		case "id":
			f.ID = asString(v)
		case "type":
			f.Type = asString(v)
		case "label":
			f.Label = asString(v)
		case "required":
			f.Required = truthy(v)
		case "placeholder":
			f.Placeholder = asString(v)
		case "defaultValue":
			f.DefaultValue = CloneValue(v)
		case "options":
			f.Options = toOptions(v)
		case "conditionalGroups":
			f.ConditionalGroups = toGroups(v)
		default:
			if _, ok := kindKeys[k]; ok {
				kind[k] = v
				continue
			}
			extra[k] = CloneValue(v)
		}
	}

	switch f.Type {
	case TypeImage:
		url, _ := kind["imageUrl"].(string)
		f.Image = &ImageSpec{ImageURL: url, DisplayOnly: true}
		f.Required = false
		delete(kind, "imageUrl")
		delete(kind, "displayOnly")
	case TypeFile, TypeImageUpload:
		accepts := toAccepts(kind["accepts"])
		if len(accepts) == 0 && f.Type == TypeImageUpload {
			accepts = append([]string{}, DefaultImageAccepts...)
		}
		f.Upload = &UploadSpec{Accepts: accepts, Multiple: truthy(kind["multiple"])}
		delete(kind, "accepts")
		delete(kind, "multiple")
	}
	for k, v := range kind {
		extra[k] = CloneValue(v)
	}
	if len(extra) > 0 {
		f.Extra = extra
	}

	return f, !SameJSON(raw, f)
}

// NormalizeFields normalizes every object in raw and drops anything that is
// not an object.
func NormalizeFields(raw []any) ([]Field, bool) {
	fields := make([]Field, 0, len(raw))
	changed := false
	for _, item := range raw {
		m, ok := item.(map[string]any)
		if !ok {
			changed = true
			continue
		}
		f, c := NormalizeField(m)
		changed = changed || c
		fields = append(fields, f)
	}
	return fields, changed
}

// DecodeFields parses a JSON value that must be an array of fields. A
// missing or null value yields (nil, false, nil); any other non-array value
// is common.ErrInvalidFields.
func DecodeFields(data json.RawMessage) ([]Field, bool, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil, false, nil
	}
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, err
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, false, common.ErrInvalidFields
	}
	fields, changed := NormalizeFields(list)
	return fields, changed, nil
}

func toAccepts(v any) []string {
	switch t := v.(type) {
	case string:
		parts := strings.Split(t, ",")
		items := make([]any, len(parts))
		for i, p := range parts {
			items[i] = p
		}
		return trimmedStrings(items)
	case []any:
		return trimmedStrings(t)
	case []string:
		items := make([]any, len(t))
		for i, p := range t {
			items[i] = p
		}
		return trimmedStrings(items)
	default:
		return []string{}
	}
}

func toOptions(v any) []Option {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Option, 0, len(list))
	for _, item := range list {
		switch o := item.(type) {
		case map[string]any:
			out = append(out, Option{Value: asString(o["value"]), Label: asString(o["label"])})
		case string:
			out = append(out, Option{Value: o, Label: o})
		}
	}
	return out
}

func toGroups(v any) []ConditionalGroup {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]ConditionalGroup, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		g := ConditionalGroup{Options: toOptions(m["options"])}
		if g.Options == nil {
			g.Options = []Option{}
		}
		if when, ok := m["when"].(map[string]any); ok {
			g.When = Condition{Field: asString(when["field"]), Equals: CloneValue(when["equals"])}
		}
		out = append(out, g)
	}
	return out
}

func (f Field) toMap() map[string]any {
	m := make(map[string]any, len(f.Extra)+10)
	for k, v := range f.Extra {
		m[k] = v
	}
	m["id"] = f.ID
	m["type"] = f.Type
	m["label"] = f.Label
	m["required"] = f.Required
	if f.Placeholder != "" {
		m["placeholder"] = f.Placeholder
	}
	if f.DefaultValue != nil {
		m["defaultValue"] = f.DefaultValue
	}
	if f.Options != nil {
		m["options"] = f.Options
	}
	if f.ConditionalGroups != nil {
		m["conditionalGroups"] = f.ConditionalGroups
	}
	if f.Image != nil {
		m["imageUrl"] = f.Image.ImageURL
		m["displayOnly"] = f.Image.DisplayOnly
	}
	if f.Upload != nil {
		accepts := f.Upload.Accepts
		if accepts == nil {
			accepts = []string{}
		}
		m["accepts"] = accepts
		m["multiple"] = f.Upload.Multiple
	}
	return m
}

func (f Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.toMap())
}

func (f *Field) UnmarshalJSON(b []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw == nil {
		return errors.New("field must be an object")
	}
	*f, _ = NormalizeField(raw)
	return nil
}
