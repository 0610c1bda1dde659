package unify

import (
	"strings"

	"catalog-unifier/core/catalog"
)

// provenanceDelimiter joins provenance sets for flat storage.
const provenanceDelimiter = " | "

// ToCatalog converts the unified products into their stored form.
func ToCatalog(products []CanonicalProduct) []catalog.Product {
	out := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		stored := catalog.Product{
			Code:          p.Code,
			Name:          p.Name,
			Type:          p.Type,
			Brand:         p.Brand,
			Model:         p.Model,
			Category:      p.Category,
			Price:         p.Price,
			ListPrice:     p.ListPrice,
			OriginalNames: strings.Join(p.OriginalNames, provenanceDelimiter),
			SourceURLs:    strings.Join(p.SourceURLs, provenanceDelimiter),
		}
		for _, v := range p.Variants {
			price, _ := ParsePrice(v.Price)
			list, _ := ParsePrice(v.ListPrice)
			stored.Variants = append(stored.Variants, catalog.ProductVariant{
				Code:         v.Code,
				AttributeKey: AttributeKey(v.Attributes),
				Attributes:   AttributeDisplay(v.Attributes),
				Price:        price,
				ListPrice:    list,
				StockStatus:  v.StockStatus,
			})
		}
		out = append(out, stored)
	}
	return out
}
