package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
)

func TestDefaultCatalog_EmbeddedPool(t *testing.T) {
	catalog := DefaultCatalog(logger.NewNop())
	if len(catalog) != 3 {
		t.Fatalf("catalog size got=%d, want 3", len(catalog))
	}
	ids := map[string]bool{}
	for _, a := range catalog {
		if a.ID == "" || a.Name == "" {
			t.Fatalf("entry %+v missing id or name", a)
		}
		ids[a.ID] = true
	}
	for _, want := range []string{"ACT001", "ACT002", "ACT003"} {
		if !ids[want] {
			t.Fatalf("catalog %v missing %s", ids, want)
		}
	}
}

func TestDefaultCatalog_PathOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	body := "catalog:\n  - id: ACT900\n    name: Bubble Timer\n    weekly_plan: daily 5 minutes\n  - id: \"\"\n    name: skipped\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	t.Setenv(catalogPathEnv, path)

	catalog := DefaultCatalog(logger.NewNop())
	if len(catalog) != 1 {
		t.Fatalf("catalog size got=%d, want 1 (blank id skipped)", len(catalog))
	}
	if catalog[0].ID != "ACT900" || catalog[0].Name != "Bubble Timer" {
		t.Fatalf("entry got=%+v, want ACT900 Bubble Timer", catalog[0])
	}
}

func TestDefaultCatalog_MalformedFileFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("catalog: [not: closed"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	t.Setenv(catalogPathEnv, path)

	catalog := DefaultCatalog(logger.NewNop())
	if len(catalog) != len(fallbackCatalog) {
		t.Fatalf("catalog size got=%d, want fallback size %d", len(catalog), len(fallbackCatalog))
	}
	if catalog[0].ID != "ACT001" {
		t.Fatalf("fallback first entry got=%+v, want ACT001", catalog[0])
	}
}

func TestDefaultCatalog_NameFallsBackToID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("catalog:\n  - id: ACT901\n"), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	t.Setenv(catalogPathEnv, path)

	catalog := DefaultCatalog(logger.NewNop())
	if len(catalog) != 1 || catalog[0].Name != "ACT901" {
		t.Fatalf("catalog got=%+v, want single entry named ACT901", catalog)
	}
}
