package domain

import (
	"strings"
	"unicode"
)

// FieldKind is the input control used to render a waiver form field.
type FieldKind string

// Supported field kinds.
const (
	FieldKindText      FieldKind = "text"
	FieldKindDate      FieldKind = "date"
	FieldKindCheckbox  FieldKind = "checkbox"
	FieldKindSignature FieldKind = "signature"
	FieldKindSelect    FieldKind = "select"
)

// IsValid returns true if the field kind is recognised.
func (k FieldKind) IsValid() bool {
	switch k {
	case FieldKindText, FieldKindDate, FieldKindCheckbox, FieldKindSignature, FieldKindSelect:
		return true
	default:
		return false
	}
}

// WidgetKind is the coarse widget category reported by PDF form introspection.
type WidgetKind string

// Widget categories. Anything else is treated as WidgetText.
const (
	WidgetCheckbox WidgetKind = "checkbox"
	WidgetChoice   WidgetKind = "choice"
	WidgetText     WidgetKind = "text"
)

// RawField is one form field as enumerated from a source document.
type RawField struct {
	// Name is the field name exactly as it appears in the document.
	Name string

	// Widget is the coarse control category.
	Widget WidgetKind

	// Options lists choice values for dropdown/list widgets.
	Options []string
}

// FormField is the normalised descriptor of one extracted form field.
// Descriptors are created at ingestion time and never mutated.
type FormField struct {
	Name     string    `json:"name"`
	Kind     FieldKind `json:"type"`
	Required bool      `json:"required"`
	Options  []string  `json:"options,omitempty"`
}

// Semantic field names produced by the classifier.
const (
	FieldFirstName        = "firstName"
	FieldLastName         = "lastName"
	FieldFullName         = "fullName"
	FieldSkipper          = "skipper"
	FieldSailor           = "sailor"
	FieldParent           = "parent"
	FieldPhone            = "phone"
	FieldEmail            = "email"
	FieldAddress          = "address"
	FieldDate             = "date"
	FieldMedicalInfo      = "medicalInfo"
	FieldEmergencyName    = "emergencyName"
	FieldEmergencyPhone   = "emergencyPhone"
	FieldEmergencyAddress = "emergencyAddress"
)

// nameRule maps a lower-cased raw field name to a semantic name.
type nameRule struct {
	match func(name string) bool
	name  string
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

// nameRules is evaluated top to bottom and the first match wins.
// Order matters: the predicates overlap ("name" vs "emergency name").
var nameRules = []nameRule{
	{func(n string) bool { return containsAny(n, "firstname", "given name") }, FieldFirstName},
	{func(n string) bool { return containsAny(n, "lastname", "family name", "surname") }, FieldLastName},
	{func(n string) bool {
		return strings.Contains(n, "fullname") || (strings.Contains(n, "name") && !strings.Contains(n, "emergency"))
	}, FieldFullName},
	{func(n string) bool { return strings.Contains(n, "skipper") }, FieldSkipper},
	{func(n string) bool { return strings.Contains(n, "sailor") }, FieldSailor},
	{func(n string) bool { return containsAny(n, "parent", "guardian") }, FieldParent},

	{func(n string) bool { return containsAny(n, "phone", "mobile", "cell") }, FieldPhone},
	{func(n string) bool { return strings.Contains(n, "email") }, FieldEmail},
	{func(n string) bool { return strings.Contains(n, "address") && !strings.Contains(n, "emergency") }, FieldAddress},

	{func(n string) bool { return containsAny(n, "date", "dob", "birth date") }, FieldDate},

	{func(n string) bool { return containsAny(n, "medical", "allergy", "condition") }, FieldMedicalInfo},

	{func(n string) bool { return containsAll(n, "emergency", "name") }, FieldEmergencyName},
	{func(n string) bool {
		return strings.Contains(n, "emergency") && containsAny(n, "phone", "contact")
	}, FieldEmergencyPhone},
	{func(n string) bool { return containsAll(n, "emergency", "address") }, FieldEmergencyAddress},
}

// classifyKind picks the control kind. Widget signals take priority over the name.
func classifyKind(lower string, widget WidgetKind) FieldKind {
	switch {
	case widget == WidgetCheckbox:
		return FieldKindCheckbox
	case widget == WidgetChoice:
		return FieldKindSelect
	case containsAny(lower, "date", "dob"):
		return FieldKindDate
	case containsAny(lower, "signature", "sign", "agree"):
		return FieldKindSignature
	default:
		return FieldKindText
	}
}

// normaliseName returns the semantic name for a field, or the raw name if no rule matches.
func normaliseName(raw, lower string) string {
	for _, rule := range nameRules {
		if rule.match(lower) {
			return rule.name
		}
	}
	return raw
}

// ClassifyField maps a raw field name and widget category to a descriptor.
// It is a pure function: the same input always yields the same output.
//
// Required is always true. Documents carry no reliable required flag, so
// every extracted field is treated as mandatory.
func ClassifyField(rawName string, widget WidgetKind) FormField {
	lower := strings.ToLower(rawName)
	return FormField{
		Name:     normaliseName(rawName, lower),
		Kind:     classifyKind(lower, widget),
		Required: true,
	}
}

// ClassifyFields classifies every raw field in order. Select fields keep the
// options reported by the extractor.
func ClassifyFields(raws []RawField) []FormField {
	fields := make([]FormField, 0, len(raws))
	for _, raw := range raws {
		field := ClassifyField(raw.Name, raw.Widget)
		if field.Kind == FieldKindSelect && len(raw.Options) > 0 {
			field.Options = append([]string(nil), raw.Options...)
		}
		fields = append(fields, field)
	}
	return fields
}

// FieldGroup buckets descriptors for form layout.
type FieldGroup string

// Field groups in display order.
const (
	GroupPersonal  FieldGroup = "personal"
	GroupContact   FieldGroup = "contact"
	GroupDates     FieldGroup = "dates"
	GroupMedical   FieldGroup = "medical"
	GroupEmergency FieldGroup = "emergency"
	GroupOther     FieldGroup = "other"
)

// FieldGroups lists the groups in display order.
var FieldGroups = []FieldGroup{GroupPersonal, GroupContact, GroupDates, GroupMedical, GroupEmergency, GroupOther}

// GroupOf returns the layout group of a descriptor.
func GroupOf(f FormField) FieldGroup {
	switch f.Name {
	case FieldFullName, FieldFirstName, FieldLastName, FieldSkipper, FieldSailor, FieldParent:
		return GroupPersonal
	case FieldPhone, FieldEmail, FieldAddress:
		return GroupContact
	case FieldMedicalInfo:
		return GroupMedical
	case FieldEmergencyName, FieldEmergencyPhone, FieldEmergencyAddress:
		return GroupEmergency
	}
	if f.Kind == FieldKindDate || strings.Contains(f.Name, "date") {
		return GroupDates
	}
	return GroupOther
}

// GroupFields splits descriptors into layout groups, preserving order within each group.
func GroupFields(fields []FormField) map[FieldGroup][]FormField {
	groups := make(map[FieldGroup][]FormField)
	for _, f := range fields {
		g := GroupOf(f)
		groups[g] = append(groups[g], f)
	}
	return groups
}

// Label returns the display label of the descriptor.
func (f FormField) Label() string {
	return FieldLabel(f.Name)
}

// FieldLabel turns a field name such as "emergencyPhone" or "agree_date"
// into "Emergency Phone" or "Agree Date".
func FieldLabel(name string) string {
	var b strings.Builder
	prev := ' '
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == '.':
			r = ' '
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			b.WriteRune(' ')
		}
		if r == ' ' && prev == ' ' {
			continue
		}
		if prev == ' ' {
			r = unicode.ToUpper(r)
		}
		b.WriteRune(r)
		prev = r
	}
	return strings.TrimSpace(b.String())
}
