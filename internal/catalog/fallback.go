package catalog

import (
	_ "embed"
	"encoding/json"
)

// fallbackJSON contains the sample menu served when the upstream API is
// unreachable. The records use the upstream wire shape so they flow through
// the same normalization as live data.
//
//go:embed fallback.json
var fallbackJSON []byte

// Fallback returns the embedded sample menu, normalized.
func Fallback() []Product {
	var records []Record
	// The embedded set is fixed at build time; a decode failure here is a
	// programming error, not a runtime condition.
	if err := json.Unmarshal(fallbackJSON, &records); err != nil {
		panic("catalog: malformed embedded fallback data: " + err.Error())
	}

	products := make([]Product, len(records))
	for i, rec := range records {
		products[i] = Normalize(rec, i)
	}
	return products
}
