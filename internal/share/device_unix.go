//go:build linux || darwin

package share

import (
	"golang.org/x/sys/unix"
)

func platformDevice() DeviceInfo {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		return DeviceInfo{}
	}
	return DeviceInfo{
		Device:       unix.ByteSliceToString(uts.Nodename[:]),
		Brand:        unix.ByteSliceToString(uts.Sysname[:]),
		Manufacturer: unix.ByteSliceToString(uts.Machine[:]),
		APILevel:     unix.ByteSliceToString(uts.Release[:]),
	}
}
