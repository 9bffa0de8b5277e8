package fatal

// MessageCapacity is the largest formatted assertion body, in bytes.
const MessageCapacity = 1024

// message is a fixed-capacity text buffer. Appends past MessageCapacity
// are dropped. buf[n] is always 0, so the content stays terminated even
// when truncated.
type message struct {
	buf [MessageCapacity + 1]byte
	n   int
}

func (m *message) appendString(s string) {
	m.n += copy(m.buf[m.n:MessageCapacity], s)
	m.buf[m.n] = 0
}

func (m *message) appendBytes(b []byte) {
	m.n += copy(m.buf[m.n:MessageCapacity], b)
	m.buf[m.n] = 0
}

// appendInt writes v in decimal without going through strconv, whose
// result slice would force the buffer onto the heap.
func (m *message) appendInt(v int) {
	var digits [20]byte
	i := len(digits)

	u := uint64(v)
	if v < 0 {
		u = ^u + 1
	}
	for {
		i--
		digits[i] = byte('0' + u%10)
		u /= 10
		if u == 0 {
			break
		}
	}
	if v < 0 {
		i--
		digits[i] = '-'
	}
	m.appendBytes(digits[i:])
}

// formatAssertion renders: Assertion `expr' failed, file "file", line N
func (m *message) formatAssertion(expr, file string, line int) {
	m.appendString("Assertion `")
	m.appendString(expr)
	m.appendString("' failed, file \"")
	m.appendString(file)
	m.appendString("\", line ")
	m.appendInt(line)
}

func (m *message) bytes() []byte {
	return m.buf[:m.n]
}
