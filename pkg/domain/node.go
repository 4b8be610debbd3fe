package domain

type NodePropertyType string

const (
	NodePropertyType_String   NodePropertyType = "string"
	NodePropertyType_Text     NodePropertyType = "text"
	NodePropertyType_TagInput NodePropertyType = "tag_input"
	NodePropertyType_Integer  NodePropertyType = "integer"
	NodePropertyType_Number   NodePropertyType = "number"
	NodePropertyType_Boolean  NodePropertyType = "boolean"
	NodePropertyType_Array    NodePropertyType = "array"
	NodePropertyType_Map      NodePropertyType = "map"
)

type NodeProperty struct {
	Key         string           `json:"key"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Required    bool             `json:"required"`
	Hidden      bool             `json:"hidden"`
	Advanced    bool             `json:"advanced"` // For advanced options that should be hidden by default
	Type        NodePropertyType `json:"type"`
	IsSecret    bool             `json:"is_secret,omitempty"` // Whether this field is a secret

	// Dynamic behavior
	Dependent []string `json:"dependent,omitempty"` // List of properties this field depends on
	ShowIf    *ShowIf  `json:"show_if,omitempty"`   // Conditions for when this field should be shown

	// UI Display
	Placeholder string `json:"placeholder,omitempty"` // Placeholder text
	Help        string `json:"help,omitempty"`        // Extended help text

	// Options based on type
	Options    []NodePropertyOption   `json:"options,omitempty"`     // For selectable options
	NumberOpts *NumberPropertyOptions `json:"number_opts,omitempty"` // For number types
	ArrayOpts  *ArrayPropertyOptions  `json:"array_opts,omitempty"`  // For array type

	// Dynamic data loading
	Peekable                    bool                        `json:"peekable"`                                // Whether this field can load options dynamically
	PeekableType                IntegrationPeekableType     `json:"peekable_type,omitempty"`                 // Type of peekable data
	PeekableDependentProperties []PeekableDependentProperty `json:"peekable_dependent_properties,omitempty"` // Properties that this field depends on

	ExpressionChoice bool `json:"expression_choice"` // Whether this field can be set using expressions
}

type PeekableDependentProperty struct {
	PropertyKey string `json:"property_key"`
	ValueKey    string `json:"value_key"`
}

type NodePropertyOption struct {
	Label       string `json:"label"`
	Value       any    `json:"value"`
	Description string `json:"description"`
}

type ShowIf struct {
	PropertyKey string `json:"property_key"`
	Values      []any  `json:"values"`
}

type NumberPropertyOptions struct {
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	Default float64 `json:"default,omitempty"`
	Step    float64 `json:"step,omitempty"`
}

type ArrayPropertyOptions struct {
	MinItems int              `json:"min_items,omitempty"`
	MaxItems int              `json:"max_items,omitempty"`
	ItemType NodePropertyType `json:"item_type"`
}
