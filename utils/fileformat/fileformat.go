package fileformat

import (
	"path"

	"github.com/twinj/uuid"
)

// UniqueFormat turns an uploaded filename into a collision-free object key,
// keeping only the original extension.
func UniqueFormat(filename string) string {
	return uuid.NewV4().String() + path.Ext(filename)
}
