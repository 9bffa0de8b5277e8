//go:build !unix

package parallel

// signalGroup is a no-op where process groups are unavailable. Launch is
// unsupported on these platforms, so no sibling ranks exist to signal.
func signalGroup() error {
	return nil
}
