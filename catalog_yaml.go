package companionsdk

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ──────────────────────────────────────────────
// Catalog file loading
// ──────────────────────────────────────────────

// CatalogFile is the on-disk YAML form of the phrase and resource catalogs,
// for deployments that tune phrase lists or localize resources without
// rebuilding.
type CatalogFile struct {
	Phrases   map[CrisisType]TieredPhrases `yaml:"phrases"`
	Immediacy []string                     `yaml:"immediacy"`
	Hotlines  []Resource                   `yaml:"hotlines"`
	ByType    map[CrisisType][]Resource    `yaml:"by_type"`
	SelfHelp  []Resource                   `yaml:"self_help"`
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (*CatalogFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog parses a YAML catalog document.
func ParseCatalog(data []byte) (*CatalogFile, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("unmarshal catalog: %w", err)
	}
	return &cf, nil
}

// PatternCatalog builds a detector catalog from the file, falling back to
// the built-in defaults for sections the file omits. Type iteration order
// follows the default catalog so detection stays deterministic.
func (cf *CatalogFile) PatternCatalog() *PatternCatalog {
	base := DefaultPatternCatalog()
	if len(cf.Phrases) > 0 {
		base.Phrases = cf.Phrases
		base.Types = orderedTypes(cf.Phrases)
	}
	if len(cf.Immediacy) > 0 {
		base.Immediacy = cf.Immediacy
	}
	return base
}

// ResourceCatalog builds a selector catalog from the file, falling back to
// the built-in defaults for sections the file omits.
func (cf *CatalogFile) ResourceCatalog() *ResourceCatalog {
	base := DefaultResourceCatalog()
	if len(cf.Hotlines) > 0 {
		base.Hotlines = cf.Hotlines
	}
	if len(cf.ByType) > 0 {
		base.ByType = cf.ByType
	}
	if len(cf.SelfHelp) > 0 {
		base.SelfHelp = cf.SelfHelp
	}
	return base
}

// orderedTypes keeps the canonical type order first, then appends any
// custom categories the file introduces.
func orderedTypes(phrases map[CrisisType]TieredPhrases) []CrisisType {
	canonical := []CrisisType{
		CrisisSuicide, CrisisSelfHarm, CrisisViolence,
		CrisisAbuse, CrisisMedical, CrisisEmotional,
	}
	seen := make(map[CrisisType]bool, len(canonical))
	var types []CrisisType
	for _, t := range canonical {
		if _, ok := phrases[t]; ok {
			types = append(types, t)
			seen[t] = true
		}
	}
	var extras []CrisisType
	for t := range phrases {
		if !seen[t] {
			extras = append(extras, t)
		}
	}
	// Deterministic order for custom categories.
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(types, extras...)
}
