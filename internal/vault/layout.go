package vault

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// DirCheck is the outcome of inspecting one vault directory.
type DirCheck struct {
	Name   string
	Path   string
	Passed bool
	Detail string
}

// CheckLayout verifies that the vault root and storage directory exist and
// are readable and writable.
func (v *Vault) CheckLayout() []DirCheck {
	return []DirCheck{
		checkDirectoryAccess("vault", v.root),
		checkDirectoryAccess("storage", v.storageDir),
	}
}

func checkDirectoryAccess(name, path string) DirCheck {
	result := DirCheck{Name: name, Path: path}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			result.Detail = "does not exist"
			return result
		}
		result.Detail = fmt.Sprintf("stat: %v", err)
		return result
	}
	if !info.IsDir() {
		result.Detail = "is not a directory"
		return result
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		result.Detail = fmt.Sprintf("insufficient permissions: %v", err)
		return result
	}
	result.Passed = true
	result.Detail = "read/write ok"
	return result
}
