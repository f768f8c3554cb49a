package domain

import "time"

const (
	// BootstrapInviteID and BootstrapInviteCode identify the invite created on an
	// empty deployment so that the first operator can register.
	BootstrapInviteID   = "initial"
	BootstrapInviteCode = "ESKADMIN1"
	// SystemCreator is recorded as the creator of invites nobody asked for.
	SystemCreator = "system"
)

// Invite is a one-time registration code. Once UsedBy is set it stays set.
type Invite struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	Code      string     `gorm:"not null;uniqueIndex" json:"code"`
	CreatedBy string     `gorm:"not null" json:"createdBy"`
	UsedBy    *string    `gorm:"index" json:"usedBy"`
	UsedAt    *time.Time `json:"usedAt"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (i *Invite) IsUsed() bool {
	return i.UsedBy != nil
}
