//go:build !unix

package bio

import "fmt"

// mmapFile has no non-Unix implementation, so opening a container fails
// outright on these platforms rather than falling back to a full read.
func mmapFile(fd uintptr, size int) ([]byte, error) {
	return nil, fmt.Errorf("memory mapping is not supported on this platform")
}

// munmapFile is a no-op on non-Unix platforms, where mmapFile never succeeds.
func munmapFile(data []byte) error {
	return nil
}
