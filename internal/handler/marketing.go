package handler

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antigravity-ventures/thaiturk/internal/engine"
	"github.com/antigravity-ventures/thaiturk/internal/lexicon"
	"github.com/antigravity-ventures/thaiturk/internal/model"
)

// platformCPCEstimates holds per-region cost-per-click estimates in USD,
// used to weight campaign budget allocations.
var platformCPCEstimates = map[string]map[string]float64{
	"google": {"turkey": 0.45, "russia": 0.35, "uae": 1.20, "europe": 1.80, "asia": 0.60},
	"meta":   {"turkey": 0.25, "russia": 0.20, "uae": 0.80, "europe": 0.95, "asia": 0.40},
	"yandex": {"russia": 0.30, "turkey": 0.40},
	"vk":     {"russia": 0.15},
	"line":   {"asia": 0.35},
}

// Marketing plans campaigns and produces SEO keyword packages. Requests are
// routed by an action field, defaulting to a status summary.
type Marketing struct {
	lex *lexicon.Lexicon
}

// NewMarketing creates the Marketing sector handler.
func NewMarketing(lex *lexicon.Lexicon) *Marketing {
	return &Marketing{lex: lex}
}

// Sector implements engine.Handler.
func (m *Marketing) Sector() model.Sector { return model.SectorMarketing }

// Handle dispatches on the request's action field.
func (m *Marketing) Handle(_ context.Context, req engine.Request) (engine.Response, error) {
	action := req.MetaString("action", "status")
	switch action {
	case "seo_analyze":
		return m.seoAnalyze(req), nil
	case "campaign_plan", "campaign_budget":
		return m.campaignPlan(req)
	case "status":
		return m.status(), nil
	default:
		return m.status(), nil
	}
}

// Fallback implements engine.Handler.
func (m *Marketing) Fallback() engine.Response {
	return m.status()
}

func (m *Marketing) status() engine.Response {
	return engine.Response{
		"agent":  "MarketingAgent",
		"status": "active",
		"sector": string(model.SectorMarketing),
		"action": "marketing_coordination",
		"message": "Your marketing request has been received. SEO, content " +
			"production, campaign planning and analytics reporting are available.",
		"capabilities": []string{
			"SEO keyword analysis and meta tag generation",
			"Blog, ad and social content production",
			"Google Ads / Meta Ads / Yandex campaign planning",
			"Performance metrics and ROI estimation",
			"Lead segmentation and remarketing",
		},
	}
}

// seoAnalyze derives a deterministic keyword package for a procedure/region.
func (m *Marketing) seoAnalyze(req engine.Request) engine.Response {
	procedure := normalizeProcedure(req.MetaString("procedure", "hair_transplant"))
	region := req.MetaString("region", "turkey")

	keywords := m.suggestKeywords(procedure, region)
	title := fmt.Sprintf("%s — %s", titleCase(procedure), titleCase(region))

	return engine.Response{
		"agent":     "MarketingAgent",
		"sector":    string(model.SectorMarketing),
		"action":    "seo_analyze",
		"status":    "ok",
		"procedure": procedure,
		"region":    region,
		"keywords":  keywords,
		"meta_tags": map[string]any{
			"title":       title,
			"description": fmt.Sprintf("Premium %s in %s", strings.ReplaceAll(procedure, "_", " "), titleCase(region)),
			"keywords":    strings.Join(keywords, ", "),
		},
	}
}

// suggestKeywords combines the procedure with region and commercial intent
// modifiers. Deterministic on purpose; no external keyword API.
func (m *Marketing) suggestKeywords(procedure, region string) []string {
	base := strings.ReplaceAll(procedure, "_", " ")
	keywords := []string{
		base,
		base + " " + region,
		base + " cost",
		base + " price " + region,
		"best " + base + " clinic",
		base + " before after",
	}
	if locale, ok := m.lex.Region(region); ok && locale.Language != "en" {
		keywords = append(keywords, base+" "+locale.Language)
	}
	return keywords
}

// campaignPlan allocates the budget across region/platform pairs weighted
// by inverse CPC: cheaper inventory gets more budget for more clicks.
func (m *Marketing) campaignPlan(req engine.Request) (engine.Response, error) {
	procedure := normalizeProcedure(req.MetaString("procedure", "hair_transplant"))
	budget := req.MetaFloat("budget_usd", 1000)
	duration := int(req.MetaFloat("duration_days", 30))
	if budget <= 0 {
		return nil, fmt.Errorf("campaign budget must be positive, got %.2f", budget)
	}

	regions := metaStrings(req, "regions")
	if len(regions) == 0 {
		regions = []string{"turkey"}
	}
	platforms := metaStrings(req, "platforms")
	if len(platforms) == 0 {
		platforms = []string{"google", "meta"}
	}

	plan := m.BuildPlan(procedure, regions, platforms, budget, duration)
	resp := engine.Response(plan.AsMap())
	resp["agent"] = "MarketingAgent"
	resp["sector"] = string(model.SectorMarketing)
	resp["action"] = "campaign_plan"
	resp["status"] = "draft"
	return resp, nil
}

// BuildPlan computes the budget-weighted allocation. Pairs without a CPC
// estimate are skipped rather than guessed.
func (m *Marketing) BuildPlan(procedure string, regions, platforms []string, budgetUSD float64, durationDays int) *model.CampaignPlan {
	type entry struct {
		region, platform string
		cpc              float64
	}
	var entries []entry
	for _, region := range regions {
		for _, platform := range platforms {
			if cpc, ok := platformCPCEstimates[platform][region]; ok && cpc > 0 {
				entries = append(entries, entry{region: region, platform: platform, cpc: cpc})
			}
		}
	}

	plan := &model.CampaignPlan{
		Procedure:      procedure,
		Regions:        regions,
		TotalBudgetUSD: budgetUSD,
		DurationDays:   durationDays,
		Keywords:       m.suggestKeywords(procedure, regions[0]),
	}
	if len(entries) == 0 {
		return plan
	}

	totalWeight := 0.0
	for _, e := range entries {
		totalWeight += 1.0 / e.cpc
	}
	for _, e := range entries {
		weight := (1.0 / e.cpc) / totalWeight
		lang := ""
		if locale, ok := m.lex.Region(e.region); ok {
			lang = locale.Language
		}
		plan.Allocations = append(plan.Allocations, model.CampaignAllocation{
			Region:    e.region,
			Platform:  e.platform,
			Language:  lang,
			BudgetUSD: model.RoundUSD(budgetUSD * weight),
		})
	}
	return plan
}

func normalizeProcedure(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	p = strings.ReplaceAll(p, " ", "_")
	return strings.ReplaceAll(p, "-", "_")
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

func metaStrings(req engine.Request, key string) []string {
	var out []string
	switch v := req.Metadata[key].(type) {
	case []string:
		out = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
