//go:build windows

package fserr

import "syscall"

// ERROR_DIR_NOT_EMPTY and ERROR_ALREADY_EXISTS are not mapped by io/fs.
var platformRules = []rule{
	{syscall.Errno(145), NotEmpty},
	{syscall.Errno(183), AlreadyExists},
}
