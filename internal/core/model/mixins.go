package model

type WithID[T ~string] interface {
	ID() T
}

type WithOwner interface {
	Owner() User
}
