//go:build nocgo

package sink

// OpenSystemDevice is unavailable without cgo.
func OpenSystemDevice(int) (Device, error) {
	return nil, ErrPlaybackUnavailable
}
