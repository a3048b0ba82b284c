// internal/models/recipient.go
package models

// Recipient kinds
const (
	RecipientKindDonor    = "donor"
	RecipientKindReceiver = "receiver"
)

// Recipient is a read-only projection of a donor or receiver record from the
// registration subsystem. The dispatch engine never mutates it.
type Recipient struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone,omitempty"`
	Email      string `json:"email,omitempty"`
	BloodGroup string `json:"bloodGroup"`
	Location   string `json:"location"`
	Kind       string `json:"kind"` // "donor", "receiver"
}
