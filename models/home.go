package models

// Home is a household. Users, quests, templates, rewards and bounties all
// hang off a home; members never see another home's data.
type Home struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	Name       string `gorm:"uniqueIndex;not null" json:"name"`
	Slug       string `gorm:"index" json:"slug"`
	InviteCode string `gorm:"uniqueIndex;not null" json:"invite_code"`

	Users []User `json:"users,omitempty" gorm:"foreignKey:HomeID"`

	Timestamps
}
