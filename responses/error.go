package responses

import (
	"fmt"
)

// Error describes an error for humans and machines
type Error struct {
	Status int    `json:"status"`
	Detail string `json:"detail"`
}

func (e Error) Error() string {
	return fmt.Sprintf("status:%d, detail:%q", e.Status, e.Detail)
}

// NewError - a brand new error
func NewError(status int, detail string) *Error {
	return &Error{
		Status: status,
		Detail: detail,
	}
}
