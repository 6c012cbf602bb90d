//go:build windows

package ops

// Windows has no O_NOFOLLOW; ValidatePath rejects symlinks before open.
const noFollow = 0

func isSymlinkErr(error) bool { return false }
