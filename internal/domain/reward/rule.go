package reward

// ═══════════════════════════════════════════════════════════════════════════
// Rule Specifications
// ═══════════════════════════════════════════════════════════════════════════

// Specification is a composable eligibility predicate over activity
// metadata. Specifications are stateless and safe to share across
// concurrent activities.
type Specification interface {
	// IsSatisfiedBy reports whether the metadata passes the rule.
	IsSatisfiedBy(metadata Metadata) bool
}

// SpecificationFunc adapts a plain function to a Specification.
type SpecificationFunc func(metadata Metadata) bool

// IsSatisfiedBy implements Specification.
func (f SpecificationFunc) IsSatisfiedBy(metadata Metadata) bool {
	return f(metadata)
}

// AlwaysEligible accepts every activity. The default gate for
// registered strategies.
func AlwaysEligible() Specification {
	return SpecificationFunc(func(Metadata) bool { return true })
}

// MinimumMetadata requires metadata[key] >= threshold, with the same
// absent-default and negative-clamp rules strategies use.
func MinimumMetadata(key string, threshold, def float64) Specification {
	return SpecificationFunc(func(m Metadata) bool {
		return m.Get(key, def) >= threshold
	})
}

// And combines specifications by conjunction: all must accept.
func And(specs ...Specification) Specification {
	return SpecificationFunc(func(m Metadata) bool {
		for _, s := range specs {
			if !s.IsSatisfiedBy(m) {
				return false
			}
		}
		return true
	})
}
