package capval

// Severity represents the severity of a schema violation.
type Severity string

const (
	// SeverityError indicates a violation that makes the file invalid for upload.
	SeverityError Severity = "error"
	// SeverityWarning indicates a potential problem that should be reviewed
	// but does not block the upload.
	SeverityWarning Severity = "warning"
)

// Violation represents a single detected deviation from an upload
// requirement. Every Violation is attributable to exactly one rule.
type Violation struct {
	// Rule is the name of the rule that produced this violation
	Rule string `json:"rule"`

	// Severity of the violation (error or warning)
	Severity Severity `json:"severity"`

	// Message contains human-readable details, including the offending
	// field or value where applicable
	Message string `json:"message"`

	// Location is the path within the file the violation refers to,
	// e.g. "obs.assay" or "var.index[42]". Empty for file-level violations.
	Location string `json:"location,omitempty"`
}

// IsError returns true if this violation blocks the upload.
func (v Violation) IsError() bool {
	return v.Severity == SeverityError
}

// IsWarning returns true if this is a warning.
func (v Violation) IsWarning() bool {
	return v.Severity == SeverityWarning
}

// String returns a human-readable representation of the violation.
func (v Violation) String() string {
	s := string(v.Severity) + " [" + v.Rule + "]: " + v.Message
	if v.Location != "" {
		s += " at " + v.Location
	}
	return s
}

// ViolationBuilder provides a fluent API for building violations.
type ViolationBuilder struct {
	violation Violation
}

// NewViolation creates a new ViolationBuilder for the named rule.
func NewViolation(rule string, severity Severity) *ViolationBuilder {
	return &ViolationBuilder{
		violation: Violation{
			Rule:     rule,
			Severity: severity,
		},
	}
}

// ErrorViolation creates an error violation builder.
func ErrorViolation(rule string) *ViolationBuilder {
	return NewViolation(rule, SeverityError)
}

// WarningViolation creates a warning violation builder.
func WarningViolation(rule string) *ViolationBuilder {
	return NewViolation(rule, SeverityWarning)
}

// Message sets the human-readable message.
func (b *ViolationBuilder) Message(msg string) *ViolationBuilder {
	b.violation.Message = msg
	return b
}

// At sets the location path.
func (b *ViolationBuilder) At(location string) *ViolationBuilder {
	b.violation.Location = location
	return b
}

// Build returns the constructed violation.
func (b *ViolationBuilder) Build() Violation {
	return b.violation
}
