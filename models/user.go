package models

import "time"

// User is a family member tracked by the app. Passwords are stored as bcrypt hashes only.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Name         string    `gorm:"size:128;not null" json:"name"`
	Role         string    `gorm:"size:32;not null;default:'parent'" json:"role"`
	Avatar       *string   `gorm:"size:512" json:"avatar"`
	FamilyID     *uint     `gorm:"index" json:"familyId"`
	CreatedAt    time.Time `json:"createdAt"`
}

// UserPatch carries the fields of a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name         *string
	Role         *string
	Avatar       *string
	FamilyID     *uint
	PasswordHash *string
}

// Apply merges the patch onto u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Avatar != nil {
		u.Avatar = p.Avatar
	}
	if p.FamilyID != nil {
		u.FamilyID = p.FamilyID
	}
	if p.PasswordHash != nil {
		u.PasswordHash = *p.PasswordHash
	}
}
