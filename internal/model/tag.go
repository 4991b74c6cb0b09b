package model

import "errors"

// Tag is a globally unique tag name, created on first use and never changed.
type Tag struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// ErrTagExists is returned by a store when the name is already registered.
var ErrTagExists = errors.New("tag already exists")
