package upload

import "io"

type BookRequest struct {
	Service string `form:"service" json:"service" validate:"max=200"`
}

// File is an uploaded file detached from its transport.
type File struct {
	Name string
	Size int64
	Body io.Reader
}
