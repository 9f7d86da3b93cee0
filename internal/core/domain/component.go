package domain

import (
	"fmt"
	"strings"
	"time"
)

// ComponentType identifies the kind of automation or configuration unit
// discovered from the source system. The taxonomy is fixed; unknown types
// are rejected at ingestion.
type ComponentType string

// Known component types.
const (
	// ComponentTypeFlow is a declarative automation flow.
	ComponentTypeFlow ComponentType = "flow"

	// ComponentTypeApexClass is a code unit (class).
	ComponentTypeApexClass ComponentType = "apex_class"

	// ComponentTypeApexTrigger is a code unit bound to record events.
	ComponentTypeApexTrigger ComponentType = "apex_trigger"

	// ComponentTypeValidationRule is a declarative data validation rule.
	ComponentTypeValidationRule ComponentType = "validation_rule"

	// ComponentTypeWorkflowRule is a legacy workflow automation rule.
	ComponentTypeWorkflowRule ComponentType = "workflow_rule"

	// ComponentTypeObject is a data object (standard or custom).
	ComponentTypeObject ComponentType = "object"

	// ComponentTypeField is a single field on an object.
	ComponentTypeField ComponentType = "field"
)

// IsValid returns true if the component type is part of the taxonomy.
func (t ComponentType) IsValid() bool {
	switch t {
	case ComponentTypeFlow, ComponentTypeApexClass, ComponentTypeApexTrigger,
		ComponentTypeValidationRule, ComponentTypeWorkflowRule,
		ComponentTypeObject, ComponentTypeField:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (t ComponentType) String() string {
	return string(t)
}

// ParseComponentType parses a component type case-insensitively.
func ParseComponentType(s string) (ComponentType, error) {
	t := ComponentType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", fmt.Errorf("%w: unknown component type %q", ErrInvalidInput, s)
	}
	return t, nil
}

// RiskLevel is the ordered risk assessment for a component.
type RiskLevel string

// Risk levels, lowest to highest.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// IsValid returns true if the risk level is recognised.
func (r RiskLevel) IsValid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	default:
		return false
	}
}

// Rank returns the ordering of the risk level (low=0, medium=1, high=2).
// Unrecognised values rank below low.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	default:
		return -1
	}
}

// String returns the string representation.
func (r RiskLevel) String() string {
	return string(r)
}

// ParseRiskLevel parses a risk level case-insensitively, defaulting to
// medium for values the model invents.
func ParseRiskLevel(s string) RiskLevel {
	r := RiskLevel(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return RiskMedium
	}
	return r
}

// ComplexityLevel is the ordered complexity assessment for a component.
type ComplexityLevel string

// Complexity levels, lowest to highest.
const (
	ComplexitySimple   ComplexityLevel = "simple"
	ComplexityModerate ComplexityLevel = "moderate"
	ComplexityComplex  ComplexityLevel = "complex"
)

// IsValid returns true if the complexity level is recognised.
func (c ComplexityLevel) IsValid() bool {
	switch c {
	case ComplexitySimple, ComplexityModerate, ComplexityComplex:
		return true
	default:
		return false
	}
}

// Rank returns the ordering of the complexity level (simple=0 .. complex=2).
// Unrecognised values rank below simple.
func (c ComplexityLevel) Rank() int {
	switch c {
	case ComplexitySimple:
		return 0
	case ComplexityModerate:
		return 1
	case ComplexityComplex:
		return 2
	default:
		return -1
	}
}

// String returns the string representation.
func (c ComplexityLevel) String() string {
	return string(c)
}

// ParseComplexityLevel parses a complexity level case-insensitively,
// defaulting to moderate for values the model invents.
func ParseComplexityLevel(s string) ComplexityLevel {
	c := ComplexityLevel(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return ComplexityModerate
	}
	return c
}

// ComponentRef is the stable identity of a component within the corpus:
// the pair (component type, qualified name).
type ComponentRef struct {
	// Type is the component type.
	Type ComponentType

	// Name is the qualified API name, unique within its type.
	Name string
}

// String renders the reference as "type:name".
func (r ComponentRef) String() string {
	return string(r.Type) + ":" + r.Name
}

// IsZero returns true for the empty reference.
func (r ComponentRef) IsZero() bool {
	return r.Type == "" && r.Name == ""
}

// ParseComponentRef parses a "type:name" reference string.
func ParseComponentRef(s string) (ComponentRef, error) {
	typ, name, ok := strings.Cut(s, ":")
	if !ok || name == "" {
		return ComponentRef{}, fmt.Errorf("%w: component reference must be type:name, got %q", ErrInvalidInput, s)
	}
	t, err := ParseComponentType(typ)
	if err != nil {
		return ComponentRef{}, err
	}
	return ComponentRef{Type: t, Name: name}, nil
}

// RawComponent is a component record as delivered by the metadata-source
// adapter, before semantic analysis.
type RawComponent struct {
	// Type is the component type.
	Type ComponentType `json:"component_type"`

	// Name is the qualified API name.
	Name string `json:"qualified_name"`

	// RawDefinition is the component's source payload. May be empty when
	// the source system does not expose the definition text.
	RawDefinition string `json:"raw_definition"`

	// IsActive reports whether the component is active in the source system.
	IsActive bool `json:"is_active"`
}

// Ref returns the component's identity.
func (r RawComponent) Ref() ComponentRef {
	return ComponentRef{Type: r.Type, Name: r.Name}
}

// Validate checks the minimum requirements for analysis: a valid type and
// a non-empty name. The raw definition may be empty.
func (r RawComponent) Validate() error {
	if !r.Type.IsValid() {
		return fmt.Errorf("%w: unknown component type %q", ErrInvalidInput, string(r.Type))
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: qualified name is required", ErrInvalidInput)
	}
	return nil
}

// Component is a fully analysed component as persisted in the graph.
type Component struct {
	// Type is the component type.
	Type ComponentType

	// Name is the qualified API name.
	Name string

	// RawDefinition is the component's source payload.
	RawDefinition string

	// IsActive reports whether the component is active in the source system.
	IsActive bool

	// BusinessPurpose is the analyser's summary of why the component exists.
	BusinessPurpose string

	// Risk is the assessed risk level.
	Risk RiskLevel

	// Complexity is the assessed complexity level.
	Complexity ComplexityLevel

	// Confidence is the analysis confidence on a 0-10 scale.
	Confidence float64

	// Review is true when the analysis needs human attention. A component
	// with Review false always has Confidence at or above the configured
	// threshold.
	Review bool

	// Provider names the model that produced the analysis ("mock" when the
	// fallback chain was exhausted).
	Provider string

	// FirstSeen is when the component was first ingested.
	FirstSeen time.Time

	// LastAnalyzed is when the semantic fields were last written.
	LastAnalyzed time.Time
}

// Ref returns the component's identity.
func (c Component) Ref() ComponentRef {
	return ComponentRef{Type: c.Type, Name: c.Name}
}
