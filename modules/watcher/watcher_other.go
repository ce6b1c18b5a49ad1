//go:build !darwin

package watcher

// Device is only available on darwin.
type Device struct{}

func Open(Config) (*Device, error) {
	return nil, ErrUnsupported
}

func (d *Device) Read([]byte) (int, error) {
	return 0, ErrUnsupported
}

func (d *Device) Close() error {
	return nil
}
