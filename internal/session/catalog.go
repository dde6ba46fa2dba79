package session

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Rusith21/Autism-parent-app/internal/domain"
	"github.com/Rusith21/Autism-parent-app/internal/platform/logger"
)

const catalogPathEnv = "APA_CATALOG_PATH"

//go:embed default_catalog.yaml
var defaultCatalogFS embed.FS

// fallback seed pool used when YAML is missing or invalid
var fallbackCatalog = []domain.Activity{
	{ID: "ACT001", Name: "Color Sorting", WeeklyPlan: "3 sessions of 10 minutes"},
	{ID: "ACT002", Name: "Picture Matching", WeeklyPlan: "3 sessions of 10 minutes"},
	{ID: "ACT003", Name: "Shape Puzzle", WeeklyPlan: "3 sessions of 10 minutes"},
}

type yamlCatalog struct {
	Catalog []yamlCatalogEntry `yaml:"catalog"`
}

type yamlCatalogEntry struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	WeeklyPlan string `yaml:"weekly_plan"`
}

// DefaultCatalog returns the seed pool bootstrap picks from: the file named
// by APA_CATALOG_PATH when set, otherwise the embedded default. Malformed
// input degrades to the compiled-in pool.
func DefaultCatalog(log *logger.Logger) []domain.Activity {
	raw, source, err := catalogBytes()
	if err == nil {
		if entries, perr := parseCatalog(raw); perr == nil {
			return entries
		} else {
			err = perr
		}
	}
	if log != nil {
		log.Warn("seed catalog load failed; using fallback", "source", source, "error", err)
	}
	return fallbackCatalog
}

func catalogBytes() ([]byte, string, error) {
	if p := strings.TrimSpace(os.Getenv(catalogPathEnv)); p != "" {
		b, err := os.ReadFile(p)
		return b, p, err
	}
	b, err := defaultCatalogFS.ReadFile("default_catalog.yaml")
	return b, "embedded", err
}

func parseCatalog(raw []byte) ([]domain.Activity, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	out := make([]domain.Activity, 0, len(doc.Catalog))
	for _, e := range doc.Catalog {
		id := strings.TrimSpace(e.ID)
		if id == "" {
			continue
		}
		name := strings.TrimSpace(e.Name)
		if name == "" {
			name = id
		}
		out = append(out, domain.Activity{ID: id, Name: name, WeeklyPlan: strings.TrimSpace(e.WeeklyPlan)})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("catalog has no usable entries")
	}
	return out, nil
}
