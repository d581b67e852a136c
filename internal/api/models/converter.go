package models

import (
	"github.com/jon4hz/oktasim/internal/database"
	"github.com/jon4hz/oktasim/internal/gravatar"
	"github.com/samber/lo"
)

// ToUser converts a database.User to its wire representation.
// avatars may be nil, in which case no avatar_url is set.
func ToUser(u database.User, avatars *gravatar.Resolver) User {
	return User{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: avatars.URL(u.Email),
	}
}

// ToUsers converts a slice of database.User. The result is never nil.
func ToUsers(users []database.User, avatars *gravatar.Resolver) []User {
	if len(users) == 0 {
		return []User{}
	}
	return lo.Map(users, func(u database.User, _ int) User {
		return ToUser(u, avatars)
	})
}
