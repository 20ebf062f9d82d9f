package scenario

import (
	"fmt"

	"cashflow-forecast/internal/model"
)

// Context is what a strategy sees when choosing factors.
type Context struct {
	Country model.Country
	Stats   model.HistoricalStats
}

// Strategy picks the three scenario multipliers for a plan.
type Strategy interface {
	Name() string
	Factors(ctx Context) model.FactorSet
}

const (
	NameFixed   = "fixed"
	NameDerived = "derived"
)

// New builds a strategy by name. fixed overrides the default fixed factors
// and is ignored by the derived strategy.
func New(name string, fixed *model.FactorSet) (Strategy, error) {
	switch name {
	case "", NameFixed:
		if fixed != nil {
			return &Fixed{Set: MergeFactorSet(DefaultFactorSet(), *fixed)}, nil
		}
		return NewFixed(), nil
	case NameDerived:
		return &Derived{}, nil
	default:
		return nil, fmt.Errorf("unsupported scenario strategy: %q", name)
	}
}

// Info describes a strategy for listings.
type Info struct {
	Name        string
	Description string
	Factors     *model.FactorSet // nil when factors depend on the data
}

// Catalog lists the available strategies.
func Catalog() []Info {
	def := DefaultFactorSet()
	return []Info{
		{
			Name:        NameFixed,
			Description: "Constant growth multipliers applied to the seasonal or historical baseline.",
			Factors:     &def,
		},
		{
			Name:        NameDerived,
			Description: "Multipliers derived from the window's trend and coefficient of variation, clamped per scenario.",
		},
	}
}
