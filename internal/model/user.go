package model

import "time"

// AvatarOptions lists the avatars a user can pick during onboarding.
var AvatarOptions = []string{
	"/images/Avatar1.jpg",
	"/images/Avatar2.svg",
	"/images/Avatar3.svg",
	"/images/Avatar4.jpg",
	"/images/Avatar5.svg",
	"/images/Avatar6.svg",
}

type UserProfile struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UserProfilePatch struct {
	Name   *string `json:"name,omitempty"`
	Email  *string `json:"email,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
}
