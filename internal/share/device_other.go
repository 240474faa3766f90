//go:build !linux && !darwin

package share

func platformDevice() DeviceInfo {
	return DeviceInfo{}
}
