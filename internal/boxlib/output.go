package boxlib

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"sync"
)

// DefaultPrecision is the number of significant digits standard output
// uses once the base library is running.
const DefaultPrecision = 10

// initialPrecision matches an unconfigured C++ stream.
const initialPrecision = 6

// Output is a buffered text stream that formats floating-point values
// with a fixed number of significant digits. It is safe for concurrent
// use.
type Output struct {
	mu        sync.Mutex
	w         *bufio.Writer
	precision int
}

// NewOutput wraps w.
func NewOutput(w io.Writer) *Output {
	return &Output{
		w:         bufio.NewWriter(w),
		precision: initialPrecision,
	}
}

// SetPrecision sets the significant digits used for floats.
func (o *Output) SetPrecision(p int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.precision = p
}

// Precision returns the significant digits used for floats.
func (o *Output) Precision() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.precision
}

// FormatFloat renders v with the stream's precision.
func (o *Output) FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', o.Precision(), 64)
}

// Write implements io.Writer.
func (o *Output) Write(p []byte) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Write(p)
}

// Print writes its operands separated by spaces and a trailing newline.
// float32 and float64 operands use the stream's precision.
func (o *Output) Print(args ...any) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	for i, arg := range args {
		if i > 0 {
			if err := o.w.WriteByte(' '); err != nil {
				return err
			}
		}
		var s string
		switch v := arg.(type) {
		case float64:
			s = strconv.FormatFloat(v, 'g', o.precision, 64)
		case float32:
			s = strconv.FormatFloat(float64(v), 'g', o.precision, 32)
		default:
			s = fmt.Sprint(v)
		}
		if _, err := o.w.WriteString(s); err != nil {
			return err
		}
	}
	return o.w.WriteByte('\n')
}

// Flush writes any buffered data to the underlying writer.
func (o *Output) Flush() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.w.Flush()
}
