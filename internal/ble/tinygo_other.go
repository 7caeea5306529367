//go:build !linux

package ble

import (
	"log/slog"

	"tinygo.org/x/bluetooth"
)

// Only BlueZ exposes more than one adapter; elsewhere the ID is ignored.
func newBluetoothAdapter(id string) *bluetooth.Adapter {
	if id != "" {
		slog.Warn("[BLE] adapter_id is only honoured on linux, using default adapter", "adapter_id", id)
	}
	return bluetooth.DefaultAdapter
}

func writeCharacteristic(ch bluetooth.DeviceCharacteristic, data []byte) error {
	_, err := ch.Write(data)
	return err
}
