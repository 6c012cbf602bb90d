//go:build !windows

package ops

import (
	stderrors "errors"
	"syscall"
)

const noFollow = syscall.O_NOFOLLOW

func isSymlinkErr(err error) bool {
	return stderrors.Is(err, syscall.ELOOP)
}
