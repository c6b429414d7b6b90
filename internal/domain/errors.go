package domain

import (
	"errors"
	"fmt"
)

// 业务错误：原样返回给调用方，不作为故障处理
var (
	ErrNotFound           = errors.New("not found")
	ErrSelfReference      = errors.New("cannot target yourself")
	ErrAlreadyFriends     = errors.New("already friends")
	ErrDuplicateRequest   = errors.New("friend request already pending")
	ErrAlreadyResolved    = errors.New("friend request already resolved")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidInput       = errors.New("invalid input")

	// bcrypt 只接受 72 字节以内的口令
	ErrPasswordTooLong = fmt.Errorf("%w: password longer than 72 bytes", ErrInvalidInput)
)

var businessErrs = []error{
	ErrNotFound, ErrSelfReference, ErrAlreadyFriends, ErrDuplicateRequest,
	ErrAlreadyResolved, ErrInvalidCredentials, ErrUnauthorized, ErrInvalidInput,
}

// IsBusiness reports whether err is an expected business outcome rather than a storage fault.
func IsBusiness(err error) bool {
	for _, b := range businessErrs {
		if errors.Is(err, b) {
			return true
		}
	}
	return false
}
