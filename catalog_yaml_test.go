package companionsdk

import (
	"os"
	"path/filepath"
	"testing"
)

const testCatalogYAML = `
phrases:
  suicide:
    high: ["no quiero vivir"]
    moderate: ["todo es inútil"]
immediacy: ["ahora mismo"]
hotlines:
  - name: "Teléfono de la Esperanza"
    contact: "717 003 717"
    description: "Línea de crisis"
    availability: "24/7"
`

func TestParseCatalog_OverridesPhrases(t *testing.T) {
	cf, err := ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	patterns := cf.PatternCatalog()
	if len(patterns.Types) != 1 || patterns.Types[0] != CrisisSuicide {
		t.Fatalf("expected only suicide type, got %v", patterns.Types)
	}

	d := NewCrisisDetector(patterns)
	ind := d.Detect("no quiero vivir, ahora mismo", nil)
	if ind.Severity != 10 || ind.Type != CrisisSuicide || ind.Urgency != UrgencyImmediate {
		t.Fatalf("unexpected indicators: %+v", ind)
	}
}

func TestParseCatalog_ResourceFallback(t *testing.T) {
	cf, err := ParseCatalog([]byte(testCatalogYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	resources := cf.ResourceCatalog()
	if len(resources.Hotlines) != 1 || resources.Hotlines[0].Contact != "717 003 717" {
		t.Fatalf("expected overridden hotlines, got %+v", resources.Hotlines)
	}
	// Omitted sections fall back to defaults.
	if len(resources.SelfHelp) == 0 {
		t.Fatal("expected default self-help resources")
	}
	if len(resources.ByType[CrisisAbuse]) == 0 {
		t.Fatal("expected default type-specific resources")
	}
}

func TestLoadCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(testCatalogYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cf, err := LoadCatalogFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cf.Immediacy) != 1 || cf.Immediacy[0] != "ahora mismo" {
		t.Fatalf("unexpected immediacy list: %v", cf.Immediacy)
	}
}

func TestLoadCatalogFile_Missing(t *testing.T) {
	if _, err := LoadCatalogFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
