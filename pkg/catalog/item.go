package catalog

import (
	"strings"

	"perfume-advisor-be/pkg/textnorm"
)

// Column names of the catalog file. They are an external contract with whoever exports the sheet.
const (
	ColumnBrand          = "Brand"
	ColumnModel          = "Model"
	ColumnCanonicalName  = "Nume_Produs"
	ColumnTimeOfUse      = "Timp"
	ColumnTargetGender   = "Sex"
	ColumnPrimaryScent   = "Aroma"
	ColumnSecondaryScent = "AromaSecundara"
	ColumnIntensity      = "Intensitate"
	ColumnDetailLink     = "link"
)

// Item is one recommendable perfume. Items are created at load time and never mutated.
type Item struct {
	Brand          string `json:"brand"`
	Model          string `json:"model"`
	CanonicalName  string `json:"canonical_name"`
	TimeOfUse      string `json:"time_of_use"`
	TargetGender   string `json:"target_gender"`
	PrimaryScent   string `json:"primary_scent"`
	SecondaryScent string `json:"secondary_scent"`
	Intensity      string `json:"intensity"`
	DetailLink     string `json:"detail_link"`
}

// BrandModel is the "Brand Model" label shown in the type-to-search list.
func (i Item) BrandModel() string {
	return strings.TrimSpace(i.Brand + " " + i.Model)
}

func itemFromRow(row map[string]string) Item {
	return Item{
		Brand:          row[ColumnBrand],
		Model:          row[ColumnModel],
		CanonicalName:  row[ColumnCanonicalName],
		TimeOfUse:      row[ColumnTimeOfUse],
		TargetGender:   row[ColumnTargetGender],
		PrimaryScent:   row[ColumnPrimaryScent],
		SecondaryScent: row[ColumnSecondaryScent],
		Intensity:      row[ColumnIntensity],
		DetailLink:     row[ColumnDetailLink],
	}
}

// BrandModelList returns the "Brand Model" labels of items, in catalog order.
func BrandModelList(items []Item) []string {
	list := make([]string, 0, len(items))
	for _, item := range items {
		list = append(list, item.BrandModel())
	}
	return list
}

// DedupByModel keeps the first item for every model, preserving order.
func DedupByModel(items []Item) []Item {
	seen := make(map[string]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item.Model))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

// FindByBrandModel returns the item whose brand and model match ignoring case and accents.
func FindByBrandModel(items []Item, brand, model string) (Item, bool) {
	for _, item := range items {
		if textnorm.EqualFold(item.Brand, brand) && textnorm.EqualFold(item.Model, model) {
			return item, true
		}
	}
	return Item{}, false
}

// FindByLabel resolves a "Brand Model" label picked from BrandModelList.
func FindByLabel(items []Item, label string) (Item, bool) {
	for _, item := range items {
		if textnorm.EqualFold(item.BrandModel(), label) {
			return item, true
		}
	}
	return Item{}, false
}
