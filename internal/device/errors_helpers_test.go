package device

import "github.com/convergenode/resolver/internal/convergeerr"

func isModuleNotAdmissable(err error) bool { return convergeerr.Is(err, convergeerr.ModuleNotAdmissable) }
func isRemoteDevicesDisabled(err error) bool {
	return convergeerr.Is(err, convergeerr.RemoteDevicesDisabled)
}
func isDeviceSignerNotTrusted(err error) bool {
	return convergeerr.Is(err, convergeerr.DeviceSignerNotTrusted)
}
