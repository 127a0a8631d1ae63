// Package doctor implements a repair mode ("doctor") that applies safe,
// mechanical fixes for the defects the entity checks report.
//
// The approach:
//  1. Read the document and run the standard validator
//  2. Apply fixes at the positions the diagnostics name
//  3. Write the repaired document
//  4. Re-validate the output to confirm fixes worked
//
// Tier 1 fixes (safe, deterministic, content-preserving):
//   - ENT-002: stray & becomes &amp;
//   - ENT-003: stray < becomes &lt;
//   - ENT-004: stray > becomes &gt;
//
// Tier 2 fixes:
//   - ENT-001: a disallowed entity the resolver table knows becomes its
//     numeric character reference
//
// Tag and structural defects need an author's judgement and are left alone.
package doctor

import (
	"fmt"

	"github.com/adammathes/fntverify/pkg/document"
	"github.com/adammathes/fntverify/pkg/report"
	"github.com/adammathes/fntverify/pkg/validate"
)

// Result holds the outcome of a doctor run.
type Result struct {
	Output       string
	Fixes        []Fix
	BeforeReport *report.Report
	AfterReport  *report.Report
}

// Repair validates inputPath with v, applies fixes and writes the repaired
// document. If outputPath is empty, it writes to inputPath with a ".fixed"
// suffix. Nothing is written when there is nothing to fix.
func Repair(v *validate.Validator, inputPath, outputPath string) (*Result, error) {
	if outputPath == "" {
		outputPath = inputPath + ".fixed"
	}

	// Step 1: Read and validate original
	doc, err := document.Read(inputPath)
	if err != nil {
		return nil, err
	}
	before := v.Validate(doc)
	if before.IsClean() {
		return &Result{BeforeReport: before, AfterReport: before}, nil
	}

	// Step 2: Apply fixes
	lines := append([]string(nil), doc.Lines()...)
	pending := make(edits)

	// Tier 1: escape stray characters
	fixStrayCharacters(lines, before, pending)

	// Tier 2: numeric references for known entities
	fixKnownEntities(lines, before, pending)

	fixes := pending.apply(lines)

	if len(fixes) == 0 {
		return &Result{BeforeReport: before, AfterReport: before}, nil
	}

	// Step 3: Write repaired document
	text := joinLines(lines, doc.Text())
	if err := writeDocument(outputPath, inputPath, text); err != nil {
		return nil, fmt.Errorf("writing repaired document: %w", err)
	}

	// Step 4: Re-validate to confirm
	after := v.ValidateFile(outputPath)
	return &Result{
		Output:       outputPath,
		Fixes:        fixes,
		BeforeReport: before,
		AfterReport:  after.Report,
	}, nil
}
