package scenario

import "cashflow-forecast/internal/model"

// DefaultFactorSet is the constant growth assumption over last year's baseline.
func DefaultFactorSet() model.FactorSet {
	return model.FactorSet{
		Base: model.ScenarioFactors{
			InflowFactor:  1.10,
			OutflowFactor: 1.05,
			Rationale:     "Base: 10% growth over the historical baseline",
		},
		Optimistic: model.ScenarioFactors{
			InflowFactor:  1.18,
			OutflowFactor: 1.08,
			Rationale:     "Optimistic: strong commercial traction (+18%)",
		},
		Conservative: model.ScenarioFactors{
			InflowFactor:  1.02,
			OutflowFactor: 1.03,
			Rationale:     "Conservative: flat or minimal growth (+2%)",
		},
	}
}

// Fixed returns the same factors regardless of the data.
type Fixed struct {
	Set model.FactorSet
}

func NewFixed() *Fixed { return &Fixed{Set: DefaultFactorSet()} }

func (f *Fixed) Name() string { return NameFixed }

func (f *Fixed) Factors(Context) model.FactorSet { return f.Set }

// MergeFactorSet overlays non-zero factors from override onto base.
func MergeFactorSet(base, override model.FactorSet) model.FactorSet {
	return model.FactorSet{
		Base:         mergeFactors(base.Base, override.Base),
		Optimistic:   mergeFactors(base.Optimistic, override.Optimistic),
		Conservative: mergeFactors(base.Conservative, override.Conservative),
	}
}

func mergeFactors(base, override model.ScenarioFactors) model.ScenarioFactors {
	out := base
	if override.InflowFactor != 0 {
		out.InflowFactor = override.InflowFactor
	}
	if override.OutflowFactor != 0 {
		out.OutflowFactor = override.OutflowFactor
	}
	if override.Rationale != "" {
		out.Rationale = override.Rationale
	}
	return out
}
