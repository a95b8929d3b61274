package queue

const (
	TypeLeadDial = "call:dial"
)

// LeadDialPayload is one lead to dial, with the campaign-wide script knobs
// applied at enqueue time. Bulk campaigns fan out into one task per lead so a
// failed lead never blocks the rest of the batch.
type LeadDialPayload struct {
	CampaignID string `json:"campaign_id"`
	Phone      string `json:"phone"`
	FirstName  string `json:"first_name,omitempty"`
	Context    string `json:"context,omitempty"`

	Variant       string `json:"variant,omitempty"`
	HandoffNumber string `json:"handoff_number,omitempty"`
}
