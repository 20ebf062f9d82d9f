package models

// ScenarioQuery selects a scenario; empty means base.
type ScenarioQuery struct {
	Scenario string `form:"scenario"`
}

// ExportQuery selects what a chart or CSV export renders.
type ExportQuery struct {
	View     string `form:"view"` // "plan" (default) or "compare"
	Scenario string `form:"scenario"`
}

const (
	ViewPlan    = "plan"
	ViewCompare = "compare"
)
