package census

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"

	"enrollapi/internal/standardize"
	"enrollapi/pkg/contracts/domain"
)

// RateKey addresses one cost-per-credit rate.
type RateKey struct {
	Category    domain.Category
	DegreeType  string
	StudentType domain.StudentType
}

// RateTable maps (category, degree type, student type) to a per-credit
// rate. It is a flat lookup: a missing key prices at 0, and the NTR
// engine reports every missed key so the zero never hides.
type RateTable map[RateKey]float64

// Lookup returns the rate for the key and whether the key is present.
func (t RateTable) Lookup(category domain.Category, degreeType string, studentType domain.StudentType) (float64, bool) {
	rate, ok := t[RateKey{Category: category, DegreeType: degreeType, StudentType: studentType}]
	return rate, ok
}

// DefaultRateTable returns the published per-credit rates for the current
// pricing year.
func DefaultRateTable() RateTable {
	return RateTable{
		{domain.CategoryPartnerOnline, standardize.DegreeMasters, domain.TypeNew}:     1395,
		{domain.CategoryPartnerOnline, standardize.DegreeMasters, domain.TypeCurrent}: 1650,

		{domain.CategoryBeacon, standardize.DegreeMasters, domain.TypeNew}:     290,
		{domain.CategoryBeacon, standardize.DegreeMasters, domain.TypeCurrent}: 290,

		{domain.CategoryCorporate, standardize.DegreeMasters, domain.TypeNew}:      1300,
		{domain.CategoryCorporate, standardize.DegreeMasters, domain.TypeCurrent}:  1550,
		{domain.CategoryCorporate, standardize.DegreeGradCert, domain.TypeNew}:     1195,
		{domain.CategoryCorporate, standardize.DegreeGradCert, domain.TypeCurrent}: 1195,

		{domain.CategoryRetail, standardize.DegreeMasters, domain.TypeNew}:      1395,
		{domain.CategoryRetail, standardize.DegreeMasters, domain.TypeCurrent}:  1723,
		{domain.CategoryRetail, standardize.DegreeGradCert, domain.TypeNew}:     1993,
		{domain.CategoryRetail, standardize.DegreeGradCert, domain.TypeCurrent}: 2030,

		{domain.CategoryASAP, standardize.DegreeNonDegree, domain.TypeNew}:     875,
		{domain.CategoryASAP, standardize.DegreeNonDegree, domain.TypeCurrent}: 875,

		{domain.CategoryContinuingEd, standardize.DegreeMasters, domain.TypeNew}:              800,
		{domain.CategoryContinuingEd, standardize.DegreeMasters, domain.TypeCurrent}:          800,
		{domain.CategoryContinuingEd, standardize.DegreeGradCert, domain.TypeNew}:             583,
		{domain.CategoryContinuingEd, standardize.DegreeGradCert, domain.TypeCurrent}:         583,
		{domain.CategoryContinuingEd, standardize.DegreeProfessionalCert, domain.TypeNew}:     583,
		{domain.CategoryContinuingEd, standardize.DegreeProfessionalCert, domain.TypeCurrent}: 583,
	}
}

// rateFile is the YAML shape for an externally maintained rate table.
type rateFile struct {
	Rates []struct {
		Category   string  `yaml:"category"`
		DegreeType string  `yaml:"degree_type"`
		New        float64 `yaml:"new"`
		Current    float64 `yaml:"current"`
	} `yaml:"rates"`
}

// LoadRateTableFile reads a rate table from a YAML file. Finance owns the
// rates, so deployments can override the compiled defaults without a
// build.
func LoadRateTableFile(path string) (RateTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate table: %w", err)
	}

	var file rateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse rate table: %w", err)
	}

	table := make(RateTable, len(file.Rates)*2)
	for _, r := range file.Rates {
		category := domain.Category(r.Category)
		table[RateKey{category, r.DegreeType, domain.TypeNew}] = r.New
		table[RateKey{category, r.DegreeType, domain.TypeCurrent}] = r.Current
	}
	return table, nil
}

// Entries returns the table as a sorted reference listing for reporting
// surfaces that need to explain an NTR figure.
func (t RateTable) Entries() []domain.RateEntry {
	type pair struct {
		category domain.Category
		degree   string
	}
	seen := map[pair]bool{}
	var entries []domain.RateEntry
	for key := range t {
		p := pair{key.Category, key.DegreeType}
		if seen[p] {
			continue
		}
		seen[p] = true

		rateNew, _ := t.Lookup(p.category, p.degree, domain.TypeNew)
		rateCurrent, _ := t.Lookup(p.category, p.degree, domain.TypeCurrent)
		entries = append(entries, domain.RateEntry{
			Category:    p.category,
			DegreeType:  p.degree,
			RateNew:     rateNew,
			RateCurrent: rateCurrent,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Category != entries[j].Category {
			return entries[i].Category < entries[j].Category
		}
		return entries[i].DegreeType < entries[j].DegreeType
	})
	return entries
}
