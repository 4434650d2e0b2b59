// Package entity defines the domain models for the users feature.
package entity

// Profile is the public view of an account.
type Profile struct {
	ID                 string
	Email              *string
	FullName           *string
	ProfileDescription string
	AvatarPath         *string
	AvatarURL          *string
}
