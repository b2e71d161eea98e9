package classifier

import (
	"github.com/wawagot/convlog/internal/store"
)

type seedCategory struct {
	name        string
	description string
	priority    string
	keywords    []string
}

var defaultTaxonomy = []seedCategory{
	{"development", "writing code and building features", store.PriorityHigh,
		[]string{"code", "programming", "develop", "function", "class", "implement"}},
	{"troubleshooting", "fixing errors and debugging failures", store.PriorityHigh,
		[]string{"error", "bug", "fix", "crash", "troubleshoot", "debug"}},
	{"configuration", "system settings and configuration", store.PriorityMedium,
		[]string{"config", "setting", "configuration", "setup", "option"}},
	{"testing", "tests and verification", store.PriorityMedium,
		[]string{"test", "verify", "assert", "coverage"}},
	{"data", "data handling and analysis", store.PriorityMedium,
		[]string{"data", "database", "query", "analyze", "schema"}},
	{"integration", "connecting APIs and services", store.PriorityLow,
		[]string{"connect", "api", "integration", "service", "webhook"}},
	{"backup", "backup and restore", store.PriorityLow,
		[]string{"backup", "restore", "snapshot", "archive"}},
	{"deployment", "installs and releases", store.PriorityLow,
		[]string{"install", "deploy", "deployment", "release", "rollout"}},
}

// SeedDefaults installs the default taxonomy. Existing categories are
// left alone; keywords are only added for categories created here, so
// re-running the seed does not duplicate terms.
func (c *Classifier) SeedDefaults() error {
	existing, err := c.store.ListCategories()
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, cat := range existing {
		known[cat.Name] = true
	}

	for _, sc := range defaultTaxonomy {
		if known[sc.name] {
			continue
		}
		id, err := c.store.CreateCategory(sc.name, sc.description, sc.priority)
		if err != nil {
			return err
		}
		for _, term := range sc.keywords {
			if err := c.store.AddKeyword(id, term, 1.0); err != nil {
				return err
			}
		}
	}
	return nil
}
