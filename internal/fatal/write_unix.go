//go:build unix

package fatal

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// write issues raw write(2) calls until p is drained or the descriptor
// fails. Errors are dropped: there is nowhere left to report them.
func (r *Reporter) write(p []byte) {
	fd := int(r.out.Fd())
	for len(p) > 0 {
		n, err := unix.Write(fd, p)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n <= 0 {
			return
		}
		p = p[n:]
	}
}

func (r *Reporter) writeString(s string) {
	if s == "" {
		return
	}
	r.write(unsafe.Slice(unsafe.StringData(s), len(s)))
}
