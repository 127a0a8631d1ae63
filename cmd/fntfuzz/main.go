// Command fntfuzz generates randomized synthetic documents with injected
// defects, validates them in-process and reports any defect the validator
// missed or any clean document it flagged.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adammathes/fntverify/pkg/config"
	"github.com/adammathes/fntverify/pkg/report"
	"github.com/adammathes/fntverify/pkg/validate"
)

// Fault describes a single mutation applied to a generated document.
type Fault struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    report.Category `json:"category"`
	CheckID     string          `json:"check_id,omitempty"`
}

// DocSpec describes the parameters used to generate a document.
type DocSpec struct {
	ID          int     `json:"id"`
	Filename    string  `json:"filename"`
	NumChapters int     `json:"num_chapters"`
	Faults      []Fault `json:"faults"`
}

// faultFunc is a function that mutates a document builder to inject a fault.
type faultFunc struct {
	name        string
	description string
	category    report.Category
	checkID     string // empty when only the category is predictable
	weight      int    // relative probability weight

	// breaksParse faults stop the strict parser, which reports only the
	// first error and skips the tag rules. needsTree faults are found only
	// by the tag rules.
	breaksParse bool
	needsTree   bool

	apply func(b *docBuilder, rng *rand.Rand)
}

var allFaults = []faultFunc{
	// === Entity faults ===
	{
		name:        "stray_ampersand",
		description: "Bare & inside a word",
		category:    report.EntityError,
		checkID:     report.CheckUnescapedAmp,
		weight:      4,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, pick(rng, "AT&T", "R&D", "Q&A", "fish&chips"))
		},
	},
	{
		name:        "invalid_entity",
		description: "Named entity missing from every table",
		category:    report.EntityError,
		checkID:     report.CheckInvalidEntity,
		weight:      4,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, pick(rng, "&bogus;", "&foo;", "&xyzzy;"))
		},
	},
	{
		name:        "disallowed_entity",
		description: "Resolvable entity not in the allowed set",
		category:    report.EntityError,
		checkID:     report.CheckInvalidEntity,
		weight:      3,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, pick(rng, "caf&eacute;", "&Uuml;ber", "se&ntilde;or"))
		},
	},
	{
		name:        "stray_greater_than",
		description: "Bare > in running text",
		category:    report.EntityError,
		checkID:     report.CheckUnescapedGT,
		weight:      3,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, pick(rng, "x > y", "more -> less", "5 > 3"))
		},
	},
	{
		name:        "stray_less_than",
		description: "Bare < in running text",
		category:    report.EntityError,
		checkID:     report.CheckUnescapedLT,
		weight:      3,
		breaksParse: true,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, pick(rng, "x < y", "3 < 5", "a <= b"))
		},
	},
	// === Parser-level tag faults ===
	{
		name:        "misnested_tags",
		description: "Inline tags closed in the wrong order",
		category:    report.TagError,
		weight:      3,
		breaksParse: true,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, "<b><i>crossed</b></i>")
		},
	},
	{
		name:        "unclosed_tag",
		description: "Inline tag never closed",
		category:    report.TagError,
		weight:      2,
		breaksParse: true,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, "<i>dangling")
		},
	},
	{
		name:        "stray_end_tag",
		description: "End tag with no start tag",
		category:    report.TagError,
		weight:      2,
		breaksParse: true,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, "orphan</sup>")
		},
	},
	// === Tag rule faults ===
	{
		name:        "unknown_tag",
		description: "Tag outside the vocabulary",
		category:    report.TagError,
		checkID:     report.CheckUnknownTag,
		weight:      4,
		needsTree:   true,
		apply: func(b *docBuilder, rng *rand.Rand) {
			tag := pick(rng, "blink", "marquee", "span", "center")
			b.appendText(rng, "<"+tag+">odd</"+tag+">")
		},
	},
	{
		name:        "fnt_outside_fn",
		description: "Footnote text outside its <FN> block",
		category:    report.TagError,
		checkID:     report.CheckRequiredParent,
		weight:      3,
		needsTree:   true,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.appendText(rng, "<fnt>")
		},
	},
	{
		name:        "fnr_inside_fn",
		description: "Footnote reference inside an <FN> block",
		category:    report.TagError,
		checkID:     report.CheckForbiddenParent,
		weight:      3,
		needsTree:   true,
		apply: func(b *docBuilder, rng *rand.Rand) {
			b.footnoteRef = true
		},
	},
}

func pick(rng *rand.Rand, options ...string) string {
	return options[rng.Intn(len(options))]
}

// docBuilder accumulates the parts of a synthetic document.
type docBuilder struct {
	chapters    int
	page        int
	paragraphs  [][]string // per chapter
	footnoteRef bool
}

var sentences = []string{
	"The committee met on the first Tuesday of the month.",
	"Its minutes survive only in a later copy &mdash; and that copy is damaged.",
	"Smith & Jones disagree on the date.",
	"The volume cost &#163;3 and ran to &#x31;20 pages.",
	"See the <i>Annals</i> for a fuller account.",
	"Later editors added <b>marginal</b> notes&nbsp;in red.",
	"A rival edition appeared the following year.",
	"&copy; The Trustees, reproduced by permission.",
}

func newBuilder(chapters int, rng *rand.Rand) *docBuilder {
	b := &docBuilder{chapters: chapters, page: 1 + rng.Intn(300)}
	for c := 0; c < chapters; c++ {
		n := 2 + rng.Intn(3)
		paras := make([]string, n)
		for i := range paras {
			paras[i] = sentences[rng.Intn(len(sentences))]
		}
		b.paragraphs = append(b.paragraphs, paras)
	}
	return b
}

// appendText adds s to the end of a random paragraph.
func (b *docBuilder) appendText(rng *rand.Rand, s string) {
	c := rng.Intn(len(b.paragraphs))
	p := rng.Intn(len(b.paragraphs[c]))
	b.paragraphs[c][p] += " " + s
}

func (b *docBuilder) build() string {
	var sb strings.Builder
	note := 1
	for c, paras := range b.paragraphs {
		fmt.Fprintf(&sb, "<chapter>\n<title>Chapter %d</title>\n", c+1)
		for _, p := range paras {
			fmt.Fprintf(&sb, "<Page %d>\n", b.page)
			b.page++
			fmt.Fprintf(&sb, "<p>%s<fnr%d></p>\n", p, note)
			fmt.Fprintf(&sb, "<FN><fnt%d>Note %d on the text above.</FN>\n", note, note)
			note++
		}
		if b.footnoteRef {
			sb.WriteString("<FN><fnt>A note citing <fnr> another.</FN>\n")
			b.footnoteRef = false
		}
		sb.WriteString("</chapter>\n")
	}
	return sb.String()
}

func generateDoc(id int, rng *rand.Rand) (*DocSpec, string) {
	b := newBuilder(1+rng.Intn(3), rng)

	// Decide how many faults to inject: 0-3
	// 20% valid (0 faults), 40% 1 fault, 30% 2 faults, 10% 3 faults
	r := rng.Float64()
	var numFaults int
	switch {
	case r < 0.20:
		numFaults = 0
	case r < 0.60:
		numFaults = 1
	case r < 0.90:
		numFaults = 2
	default:
		numFaults = 3
	}

	spec := &DocSpec{ID: id, NumChapters: b.chapters}
	usedFaults := map[string]bool{}
	for i := 0; i < numFaults; i++ {
		// Build weight sum
		totalWeight := 0
		for _, f := range allFaults {
			if !usedFaults[f.name] {
				totalWeight += f.weight
			}
		}
		if totalWeight == 0 {
			break
		}

		choice := rng.Intn(totalWeight)
		cumulative := 0
		for _, f := range allFaults {
			if usedFaults[f.name] {
				continue
			}
			cumulative += f.weight
			if choice >= cumulative {
				continue
			}
			usedFaults[f.name] = true
			f.apply(b, rng)
			spec.Faults = append(spec.Faults, Fault{
				Name:        f.name,
				Description: f.description,
				Category:    f.category,
				CheckID:     f.checkID,
			})

			// A parse failure hides every other parse failure and all
			// tag-rule findings.
			for _, other := range allFaults {
				if (f.breaksParse && (other.breaksParse || other.needsTree)) ||
					(f.needsTree && other.breaksParse) {
					usedFaults[other.name] = true
				}
			}
			break
		}
	}

	spec.Filename = fmt.Sprintf("fuzz-%04d.fnt", id)
	return spec, b.build()
}

// detected reports whether r contains a diagnostic for fault f.
func detected(r *report.Report, f Fault) bool {
	if f.CheckID != "" {
		return r.CountCheck(f.CheckID) > 0
	}
	return len(r.Classify().Bucket(f.Category)) > 0
}

// Outcome summarizes verification of one generated document.
type Outcome struct {
	Spec   DocSpec
	Missed []string
	Issues int
}

// Failed reports whether a fault was missed or a clean document was
// flagged.
func (o Outcome) Failed() bool {
	return len(o.Missed) > 0 || (len(o.Spec.Faults) == 0 && o.Issues > 0)
}

func verify(v *validate.Validator, spec DocSpec, text string) Outcome {
	r := v.ValidateString(spec.Filename, text)
	o := Outcome{Spec: spec, Issues: r.Count()}
	for _, f := range spec.Faults {
		if !detected(r, f) {
			o.Missed = append(o.Missed, f.Name)
		}
	}
	return o
}

type options struct {
	count  int
	outDir string
	seed   int64
	write  bool
}

func run(opts options, w io.Writer) (failures int, err error) {
	v, err := validate.New(config.Default(), validate.Options{})
	if err != nil {
		return 0, err
	}
	if opts.write {
		if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
			return 0, fmt.Errorf("mkdir %s: %w", opts.outDir, err)
		}
	}

	rng := rand.New(rand.NewSource(opts.seed))
	var specs []DocSpec
	for i := 1; i <= opts.count; i++ {
		spec, text := generateDoc(i, rng)
		specs = append(specs, *spec)

		if opts.write {
			path := filepath.Join(opts.outDir, spec.Filename)
			if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
				return failures, fmt.Errorf("write %s: %w", path, err)
			}
		}

		o := verify(v, *spec, text)
		faultNames := make([]string, len(spec.Faults))
		for j, f := range spec.Faults {
			faultNames[j] = f.Name
		}
		faultStr := "valid (no faults)"
		if len(faultNames) > 0 {
			faultStr = strings.Join(faultNames, ", ")
		}
		status := "ok"
		if o.Failed() {
			failures++
			status = fmt.Sprintf("FAIL missed=%v issues=%d", o.Missed, o.Issues)
		}
		fmt.Fprintf(w, "[%3d] %s %dch: %s: %s\n", i, spec.Filename, spec.NumChapters, faultStr, status)
	}

	if opts.write {
		manifestPath := filepath.Join(opts.outDir, "manifest.json")
		manifestData, err := json.MarshalIndent(specs, "", "  ")
		if err != nil {
			return failures, err
		}
		if err := os.WriteFile(manifestPath, manifestData, 0o644); err != nil {
			return failures, fmt.Errorf("write manifest: %w", err)
		}
		fmt.Fprintf(w, "\nGenerated %d documents in %s\n", opts.count, opts.outDir)
		fmt.Fprintf(w, "Manifest: %s\n", manifestPath)
	}
	fmt.Fprintf(w, "%d of %d documents failed verification\n", failures, opts.count)
	return failures, nil
}

func main() {
	opts := options{}
	cmd := &cobra.Command{
		Use:           "fntfuzz",
		Short:         "Generate fault-injected documents and check the validator catches every fault",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			failures, err := run(opts, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			if failures > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&opts.count, "count", "n", 100, "Number of documents to generate")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "testdata/synthetic", "Output directory")
	cmd.Flags().Int64Var(&opts.seed, "seed", 42, "Random seed")
	cmd.Flags().BoolVar(&opts.write, "write", true, "Write documents and manifest.json to the output directory")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}
