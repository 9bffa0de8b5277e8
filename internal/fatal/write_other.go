//go:build !unix

package fatal

// os.File writes are unbuffered on every platform; without x/sys/unix
// they are the most direct path available.
func (r *Reporter) write(p []byte) {
	_, _ = r.out.Write(p)
}

func (r *Reporter) writeString(s string) {
	if s == "" {
		return
	}
	_, _ = r.out.WriteString(s)
}
