package domain

import "fmt"

// Attribute is a typed model attribute attached to a node. Exactly one of
// the value fields is populated; any other shape is rejected at decode time
// rather than coerced.
type Attribute struct {
	String *string  `json:"value_string,omitempty" mapstructure:"value_string"`
	Int    *int64   `json:"value_int,omitempty" mapstructure:"value_int"`
	Float  *float64 `json:"value_float,omitempty" mapstructure:"value_float"`
}

// StringAttribute builds a string-valued attribute.
func StringAttribute(v string) Attribute {
	return Attribute{String: &v}
}

// IntAttribute builds an integer-valued attribute.
func IntAttribute(v int64) Attribute {
	return Attribute{Int: &v}
}

// FloatAttribute builds a float-valued attribute.
func FloatAttribute(v float64) Attribute {
	return Attribute{Float: &v}
}

// Validate checks that exactly one variant is populated.
func (a Attribute) Validate() error {
	set := 0
	if a.String != nil {
		set++
	}
	if a.Int != nil {
		set++
	}
	if a.Float != nil {
		set++
	}
	if set != 1 {
		return fmt.Errorf("attribute must carry exactly one value, has %d", set)
	}
	return nil
}

// Value returns the populated variant, or nil for an invalid attribute.
func (a Attribute) Value() any {
	switch {
	case a.String != nil:
		return *a.String
	case a.Int != nil:
		return *a.Int
	case a.Float != nil:
		return *a.Float
	}
	return nil
}
