package diagnoses

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

type Diagnosis struct {
	Code  string `yaml:"code" json:"code"`
	Name  string `yaml:"name" json:"name"`
	Latin string `yaml:"latin,omitempty" json:"latin,omitempty"`
}

// Catalog is an immutable set of diagnoses keyed by code.
type Catalog struct {
	byCode map[string]Diagnosis
}

type catalogFile struct {
	Diagnoses []Diagnosis `yaml:"diagnoses"`
}

func NewCatalog(items []Diagnosis) (Catalog, error) {
	byCode := make(map[string]Diagnosis, len(items))
	for _, d := range items {
		code := strings.TrimSpace(d.Code)
		if code == "" {
			return Catalog{}, fmt.Errorf("diagnosis %q has no code", d.Name)
		}
		if _, dup := byCode[code]; dup {
			return Catalog{}, fmt.Errorf("duplicate diagnosis code %s", code)
		}
		d.Code = code
		byCode[code] = d
	}
	return Catalog{byCode: byCode}, nil
}

func Load(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return DefaultCatalog(), err
	}
	var file catalogFile
	if err := yaml.Unmarshal(content, &file); err != nil {
		return Catalog{}, err
	}
	if len(file.Diagnoses) == 0 {
		return Catalog{}, fmt.Errorf("diagnosis catalog empty")
	}
	return NewCatalog(file.Diagnoses)
}

func (c Catalog) Lookup(code string) (Diagnosis, bool) {
	d, ok := c.byCode[strings.TrimSpace(code)]
	return d, ok
}

// All returns the diagnoses sorted by code.
func (c Catalog) All() []Diagnosis {
	out := make([]Diagnosis, 0, len(c.byCode))
	for _, d := range c.byCode {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

func (c Catalog) Len() int {
	return len(c.byCode)
}

func DefaultCatalog() Catalog {
	cat, _ := NewCatalog([]Diagnosis{
		{Code: "M24.2", Name: "Disorder of ligament", Latin: "Morbositas ligamenti"},
		{Code: "M51.2", Name: "Other specified intervertebral disc displacement", Latin: "Alia dislocatio disci intervertebralis specificata"},
		{Code: "S03.5", Name: "Sprain and strain of joints and ligaments of other and unspecified parts of head", Latin: "Distorsio et/sive distensio articulationum et/sive ligamentorum partium aliarum sive non specificatarum capitis"},
		{Code: "J10.1", Name: "Influenza with other respiratory manifestations, other influenza virus identified", Latin: "Influenza cum aliis manifestationibus respiratoriis ab agente virali identificato"},
		{Code: "J06.9", Name: "Acute upper respiratory infection, unspecified", Latin: "Infectio acuta respiratoria superior non specificata"},
		{Code: "Z57.1", Name: "Occupational exposure to radiation"},
		{Code: "N30.0", Name: "Acute cystitis", Latin: "Cystitis acuta"},
		{Code: "H54.7", Name: "Unspecified visual loss", Latin: "Amblyopia NAS"},
		{Code: "J03.0", Name: "Streptococcal tonsillitis", Latin: "Tonsillitis (palatina) streptococcica"},
		{Code: "L60.1", Name: "Onycholysis", Latin: "Onycholysis"},
		{Code: "Z74.3", Name: "Need for continuous supervision"},
		{Code: "L20", Name: "Atopic dermatitis", Latin: "Atopic dermatitis"},
		{Code: "F43.2", Name: "Adjustment disorders", Latin: "Perturbationes adaptationis"},
		{Code: "S62.5", Name: "Fracture of thumb", Latin: "Fractura [ossis/ossium] pollicis"},
		{Code: "H35.29", Name: "Other proliferative retinopathy", Latin: "Alia retinopathia proliferativa"},
	})
	return cat
}
