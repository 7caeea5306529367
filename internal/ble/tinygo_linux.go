package ble

import "tinygo.org/x/bluetooth"

func newBluetoothAdapter(id string) *bluetooth.Adapter {
	if id != "" {
		return bluetooth.NewAdapter(id)
	}
	return bluetooth.DefaultAdapter
}

// BlueZ picks a write request when the characteristic allows one, so the
// call is acknowledged despite its name.
func writeCharacteristic(ch bluetooth.DeviceCharacteristic, data []byte) error {
	_, err := ch.WriteWithoutResponse(data)
	return err
}
