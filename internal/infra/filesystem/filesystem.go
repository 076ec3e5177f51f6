package filesystem

import "errors"

// ErrNotExist is returned by readers when the requested file is absent.
var ErrNotExist = errors.New("file does not exist")

type (
	Reader interface {
		ReadJSON(path string, target any) error
	}
	Writer interface {
		WriteJSON(path string, data any) error
		WriteBytes(path string, data []byte) error
	}
)
