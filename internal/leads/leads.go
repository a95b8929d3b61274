// Package leads defines the lead record contract for bulk dialing. Lead
// ingestion (CSV or otherwise) lives outside this service; batches arrive
// already parsed and leave here normalized and de-duplicated.
package leads

import (
	"strings"

	"github.com/nikhilbhutani/coldcall/internal/phone"
)

// Lead is one person to call.
type Lead struct {
	Name      string            `json:"name"`
	FirstName string            `json:"first_name,omitempty"`
	Phone     string            `json:"phone"`
	Context   string            `json:"context,omitempty"`
	Record    map[string]string `json:"record,omitempty"`
}

// NormalizeBatch canonicalizes phone numbers, fills FirstName from Name when
// missing, drops unreachable leads, and de-duplicates by phone keeping the
// first occurrence. skipped counts dropped entries.
func NormalizeBatch(in []Lead) (valid []Lead, skipped int) {
	seen := make(map[string]struct{}, len(in))
	for _, l := range in {
		l.Phone = phone.Normalize(l.Phone)
		if l.Phone == "" {
			skipped++
			continue
		}
		if _, dup := seen[l.Phone]; dup {
			skipped++
			continue
		}
		seen[l.Phone] = struct{}{}

		if l.FirstName == "" {
			if fields := strings.Fields(l.Name); len(fields) > 0 {
				l.FirstName = fields[0]
			}
		}
		valid = append(valid, l)
	}
	return valid, skipped
}
