package report

import "fmt"

// Category is the reporting bucket a diagnostic belongs to.
type Category string

const (
	// Uncategorized marks a freeform diagnostic whose bucket is decided by
	// CategoryFromMessage at classification time.
	Uncategorized Category = ""
	// EntityError covers invalid named entities and unescaped &, < and >.
	EntityError Category = "REPENT"
	// TagError covers unknown tags, misnesting and parent/child rule violations.
	TagError Category = "REPTAG"
	// StructuralError covers every other parser failure and document access failures.
	StructuralError Category = "CHECKSGM"
)

// Categories lists the buckets in reporting order.
var Categories = []Category{EntityError, TagError, StructuralError}

// Label returns a human-readable description of the category.
func (c Category) Label() string {
	switch c {
	case EntityError:
		return "Entity Errors"
	case TagError:
		return "Tag Mismatches or Unknown Tags"
	case StructuralError:
		return "Structural Errors"
	}
	return "Uncategorized"
}

// Check IDs attached to diagnostics produced by this module's own validators.
const (
	CheckInvalidEntity   = "ENT-001"
	CheckUnescapedAmp    = "ENT-002"
	CheckUnescapedLT     = "ENT-003"
	CheckUnescapedGT     = "ENT-004"
	CheckUnknownTag      = "TAG-001"
	CheckMisnestedTag    = "TAG-002"
	CheckRequiredParent  = "TAG-003"
	CheckForbiddenParent = "TAG-004"
	CheckSyntax          = "XML-001"
	CheckDocumentAccess  = "DOC-001"
)

// Diagnostic is a single validation finding. Line and Column are 1-indexed;
// zero means the position is unknown.
type Diagnostic struct {
	Category Category `json:"category"`
	CheckID  string   `json:"check_id,omitempty"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Message  string   `json:"message"`
}

func (d Diagnostic) String() string {
	cat := d.Category
	if cat == Uncategorized {
		cat = CategoryFromMessage(d.Message)
	}
	if d.CheckID != "" {
		return fmt.Sprintf("%s(%s) line %d, col %d: %s", cat, d.CheckID, d.Line, d.Column, d.Message)
	}
	return fmt.Sprintf("%s line %d, col %d: %s", cat, d.Line, d.Column, d.Message)
}

// Error lets a single diagnostic travel as an error value.
func (d Diagnostic) Error() string {
	return d.String()
}

// Report collects all diagnostics from validating one document, in the
// order they were discovered.
type Report struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{}
}

// Add appends diagnostics to the report.
func (r *Report) Add(diags ...Diagnostic) {
	r.Diagnostics = append(r.Diagnostics, diags...)
}

// AddAt appends a freshly built diagnostic to the report.
func (r *Report) AddAt(cat Category, checkID string, line, col int, msg string) {
	r.Diagnostics = append(r.Diagnostics, Diagnostic{
		Category: cat,
		CheckID:  checkID,
		Line:     line,
		Column:   col,
		Message:  msg,
	})
}

// Count returns the total number of diagnostics.
func (r *Report) Count() int {
	return len(r.Diagnostics)
}

// CountOf returns the number of diagnostics classified into cat.
func (r *Report) CountOf(cat Category) int {
	return len(r.Classify().Bucket(cat))
}

// CountCheck returns the number of diagnostics carrying checkID.
func (r *Report) CountCheck(checkID string) int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.CheckID == checkID {
			n++
		}
	}
	return n
}

// IsClean returns true if the report holds no diagnostics. An empty list is
// the only "no defects" signal.
func (r *Report) IsClean() bool {
	return len(r.Diagnostics) == 0
}
