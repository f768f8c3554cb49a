package api

import "encoding/json"

// optionalString tells an absent JSON field apart from an explicit null.
// Set is true whenever the key was present in the body.
type optionalString struct {
	Set   bool
	Value *string
}

func (o *optionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

// patch returns nil when the field was absent, otherwise a pointer to the new
// (possibly nil) value.
func (o optionalString) patch() **string {
	if !o.Set {
		return nil
	}
	v := o.Value
	return &v
}
