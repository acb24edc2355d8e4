package model

// CampaignAllocation is a budget slice assigned to one region/platform pair.
type CampaignAllocation struct {
	Region    string
	Platform  string
	Language  string
	BudgetUSD float64
}

// CampaignPlan is the Marketing handler's budget-weighted media plan.
type CampaignPlan struct {
	Procedure      string
	Regions        []string
	Allocations    []CampaignAllocation
	Keywords       []string
	TotalBudgetUSD float64
	DurationDays   int
}

// AsMap renders the plan for the dispatch envelope.
func (p *CampaignPlan) AsMap() map[string]any {
	allocations := make([]map[string]any, 0, len(p.Allocations))
	for _, a := range p.Allocations {
		allocations = append(allocations, map[string]any{
			"region":     a.Region,
			"platform":   a.Platform,
			"language":   a.Language,
			"budget_usd": a.BudgetUSD,
		})
	}
	return map[string]any{
		"procedure":        p.Procedure,
		"regions":          p.Regions,
		"total_budget_usd": p.TotalBudgetUSD,
		"duration_days":    p.DurationDays,
		"allocations":      allocations,
		"keywords":         p.Keywords,
	}
}
