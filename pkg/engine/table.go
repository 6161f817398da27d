package engine

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/praetorian-inc/uaparser/pkg/matcher"
	"github.com/praetorian-inc/uaparser/pkg/prefilter"
	"github.com/praetorian-inc/uaparser/pkg/template"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

// candidateBuf is the size of the per-query candidate buffer kept on the
// stack. Lookups with more candidates spill to the heap.
const candidateBuf = 64

// entry is a compiled rule.
type entry struct {
	rule    *types.Rule
	pattern *matcher.Pattern

	family     *template.Template
	major      *template.Template
	minor      *template.Template
	patch      *template.Template
	patchMinor *template.Template
	brand      *template.Template
	model      *template.Template
}

// Table is the compiled, indexed rule list of one category. It is immutable
// once built and safe for concurrent use.
type Table struct {
	category types.Category
	entries  []entry // entries[i] has declaration index i+1
	filter   *prefilter.Prefilter
	logger   *slog.Logger
	built    time.Duration
}

// TableStats describes the size of a table.
type TableStats struct {
	Category types.Category `json:"category"`
	prefilter.Stats
	Strategy  prefilter.Strategy `json:"strategy"`
	BuildTime time.Duration      `json:"build_time"`
}

func newTable(category types.Category, rules []*types.Rule, cfg *config) (*Table, error) {
	start := time.Now()
	t := &Table{
		category: category,
		entries:  make([]entry, 0, len(rules)),
		filter:   prefilter.New(cfg.strategy),
		logger:   cfg.logger,
	}

	for i, src := range rules {
		if src == nil {
			return nil, fmt.Errorf("%s rule %d is nil", category, i+1)
		}
		r := *src
		r.Category = category
		r.Index = i + 1
		if r.ID == "" {
			r.ID = fmt.Sprintf("%s.%d", category, r.Index)
		}
		if r.StructuralID == "" {
			r.StructuralID = r.ComputeStructuralID()
		}

		p, err := matcher.Compile(r.Pattern, !r.CaseInsensitive, cfg.matchTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid regex for rule %s: %w", r.ID, err)
		}
		t.filter.Add(r.Pattern, r.Index)

		t.entries = append(t.entries, entry{
			rule:       &r,
			pattern:    p,
			family:     template.Compile(r.FamilyReplacement),
			major:      template.Compile(r.MajorReplacement),
			minor:      template.Compile(r.MinorReplacement),
			patch:      template.Compile(r.PatchReplacement),
			patchMinor: template.Compile(r.PatchMinorReplacement),
			brand:      template.Compile(r.BrandReplacement),
			model:      template.Compile(r.ModelReplacement),
		})
	}
	t.filter.Freeze()
	t.built = time.Since(start)
	return t, nil
}

// Category returns the category of the table.
func (t *Table) Category() types.Category {
	return t.category
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.entries)
}

// Rules returns the table's rules in declaration order.
func (t *Table) Rules() []*types.Rule {
	out := make([]*types.Rule, len(t.entries))
	for i := range t.entries {
		out[i] = t.entries[i].rule
	}
	return out
}

// Candidates returns the declaration indices of the rules that could match
// text, in ascending order.
func (t *Table) Candidates(text string) []int {
	return t.filter.Filter(text, nil)
}

// Lookup returns the first rule, in declaration order, whose pattern matches
// text, leaving its groups in m. It returns nil when no rule matches.
func (t *Table) Lookup(text string, m *matcher.Match) *types.Rule {
	if e := t.lookup(text, m); e != nil {
		return e.rule
	}
	return nil
}

// LookupLinear is Lookup without the prefilter: every rule is tried in
// declaration order.
func (t *Table) LookupLinear(text string, m *matcher.Match) *types.Rule {
	if e := t.lookupLinear(text, m); e != nil {
		return e.rule
	}
	return nil
}

func (t *Table) lookup(text string, m *matcher.Match) *entry {
	if t.filter.Strategy() == prefilter.StrategyNone {
		return t.lookupLinear(text, m)
	}

	var buf [candidateBuf]int
	for _, index := range t.filter.Filter(text, buf[:0]) {
		e := &t.entries[index-1]
		if t.match(e, text, m) {
			return e
		}
	}
	m.Reset()
	return nil
}

func (t *Table) lookupLinear(text string, m *matcher.Match) *entry {
	for i := range t.entries {
		e := &t.entries[i]
		if t.match(e, text, m) {
			return e
		}
	}
	m.Reset()
	return nil
}

func (t *Table) match(e *entry, text string, m *matcher.Match) bool {
	ok, err := e.pattern.MatchErr(text, m)
	if err != nil {
		if matcher.IsTimeout(err) {
			t.logger.Warn("rule regex timeout, skipping rule for this input",
				"rule", e.rule.ID, "length", len(text))
		} else {
			t.logger.Warn("rule regex error, skipping rule for this input",
				"rule", e.rule.ID, "error", err)
		}
		return false
	}
	return ok
}

// Stats reports the size of the table.
func (t *Table) Stats() TableStats {
	return TableStats{
		Category:  t.category,
		Stats:     t.filter.Stats(),
		Strategy:  t.filter.Strategy(),
		BuildTime: t.built,
	}
}

// agent builds a browser or OS identity from a match of e.
func (e *entry) agent(m *matcher.Match, withPatchMinor bool) types.Agent {
	a := types.Agent{
		Family: e.familyOf(m),
		Major:  expandOrGroup(e.major, m, 2),
		Minor:  expandOrGroup(e.minor, m, 3),
		Patch:  expandOrGroup(e.patch, m, 4),
	}
	if withPatchMinor {
		a.PatchMinor = expandOrGroup(e.patchMinor, m, 5)
	}
	return a
}

// device builds a device identity from a match of e. The brand only ever
// comes from its template.
func (e *entry) device(m *matcher.Match) types.Device {
	d := types.Device{
		Family: e.familyOf(m),
		Model:  expandOrGroup(e.model, m, 1),
	}
	if !e.brand.IsEmpty() {
		d.Brand = strings.TrimSpace(e.brand.Expand(m))
	}
	return d
}

func (e *entry) familyOf(m *matcher.Match) string {
	if !e.family.IsEmpty() {
		return strings.TrimSpace(e.family.Expand(m))
	}
	if m.Count() > 1 {
		return strings.TrimSpace(m.Get(1))
	}
	return strings.TrimSpace(m.Get(0))
}

// expandOrGroup expands tmpl, or falls back to group when no template was
// declared and the match has that many groups.
func expandOrGroup(tmpl *template.Template, m *matcher.Match, group int) string {
	if !tmpl.IsEmpty() {
		return strings.TrimSpace(tmpl.Expand(m))
	}
	return strings.TrimSpace(m.Get(group))
}
