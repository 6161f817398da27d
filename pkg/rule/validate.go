package rule

import (
	"errors"
	"fmt"

	"github.com/praetorian-inc/uaparser/pkg/matcher"
	"github.com/praetorian-inc/uaparser/pkg/types"
)

// ValidateRule checks rule consistency and required fields, and compiles the
// pattern with the engine that will evaluate it.
func ValidateRule(r *types.Rule) error {
	if err := checkRule(r); err != nil {
		return err
	}
	if _, err := matcher.Compile(r.Pattern, !r.CaseInsensitive, 0); err != nil {
		return fmt.Errorf("invalid regex for rule %s: %w", r.ID, err)
	}
	return nil
}

// checkRule is ValidateRule without compiling the pattern. Loading only runs
// this check; engine.Open compiles every pattern anyway.
func checkRule(r *types.Rule) error {
	if r == nil {
		return fmt.Errorf("rule is nil")
	}

	if r.ID == "" {
		return fmt.Errorf("rule ID is required")
	}
	if r.Pattern == "" {
		return fmt.Errorf("rule %s: regex is required", r.ID)
	}
	if _, err := types.ParseCategory(string(r.Category)); err != nil {
		return fmt.Errorf("rule %s: %w", r.ID, err)
	}

	expectedID := r.ComputeStructuralID()
	if r.StructuralID != "" && r.StructuralID != expectedID {
		return fmt.Errorf("rule %s has inconsistent StructuralID: got %s, expected %s",
			r.ID, r.StructuralID, expectedID)
	}

	return nil
}

// ValidateCatalogue validates every rule and reports all problems at once.
// Duplicate patterns within a category are reported too: the later rule can
// never match.
func ValidateCatalogue(cat *types.Catalogue) error {
	if cat == nil {
		return fmt.Errorf("catalogue is nil")
	}

	var errs []error
	for _, c := range types.Categories {
		seen := make(map[string]string)
		for _, r := range cat.Rules(c) {
			if err := ValidateRule(r); err != nil {
				errs = append(errs, err)
				continue
			}
			sid := r.ComputeStructuralID()
			if first, ok := seen[sid]; ok {
				errs = append(errs, fmt.Errorf("rule %s duplicates %s and is unreachable", r.ID, first))
				continue
			}
			seen[sid] = r.ID
		}
	}
	return errors.Join(errs...)
}
