//go:build unix

package bio

import "syscall"

// mmapFile maps a VRC container file read-only so Reader can address it by
// absolute offset without copying. The fd can be closed after mapping.
func mmapFile(fd uintptr, size int) ([]byte, error) {
	return syscall.Mmap(int(fd), 0, size, syscall.PROT_READ, syscall.MAP_PRIVATE)
}

// munmapFile releases a mapping created by mmapFile, called from Reader.Close.
func munmapFile(data []byte) error {
	return syscall.Munmap(data)
}
