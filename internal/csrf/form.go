package csrf

// FieldForm is a plain Form implementation backed by a single field value.
// It stands in for the DOM form during tests and tooling.
type FieldForm struct {
	FormID string
	Value  string
	// NoField models a form without a CSRF input / Modélise un formulaire sans champ CSRF
	NoField bool
}

// ID returns the form identity the protocol keys its state by.
func (f *FieldForm) ID() string { return f.FormID }

// TokenField returns the field value, or false when the form has no field.
func (f *FieldForm) TokenField() (string, bool) {
	if f.NoField {
		return "", false
	}
	return f.Value, true
}

// SetTokenField replaces the field value.
func (f *FieldForm) SetTokenField(value string) { f.Value = value }
