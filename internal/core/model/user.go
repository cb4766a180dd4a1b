package model

type UserID string

type User interface {
	WithID[UserID]

	Name() string
}

type BaseUser struct {
	id   UserID
	name string
}

// ID implements User.
func (u *BaseUser) ID() UserID {
	return u.id
}

// Name implements User.
func (u *BaseUser) Name() string {
	return u.name
}

var _ User = &BaseUser{}

func NewUser(id UserID, name string) *BaseUser {
	return &BaseUser{
		id:   id,
		name: name,
	}
}
