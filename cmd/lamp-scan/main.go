// Command lamp-scan is a manual diagnostic for the lamp's Bluetooth link.
// It scans and lists nearby devices; with -address it connects to one and
// prints its service/characteristic index.
//
// Usage:
//
//	go run ./cmd/lamp-scan [-transport tinygo|goble] [-adapter hci0] [-duration 5s]
//	go run ./cmd/lamp-scan -address E5:D7:EE:F7:7E:8E [-save]
//	go run ./cmd/lamp-scan -daemons
//
// Flag defaults come from ~/.config/lampctl/config.yaml when it exists.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/chaz8081/lampctl/internal/ble"
	"github.com/chaz8081/lampctl/internal/config"
	"github.com/chaz8081/lampctl/internal/lamp"
	"github.com/chaz8081/lampctl/internal/mdns"
	"github.com/chaz8081/lampctl/internal/profile"
)

func main() {
	cfg := loadConfig()

	transportKind := flag.String("transport", cfg.BLE.Transport, "ble transport: tinygo or goble")
	adapterID := flag.String("adapter", cfg.BLE.AdapterID, "adapter id, e.g. hci0 (default: system adapter)")
	duration := flag.Duration("duration", cfg.BLE.ScanDuration, "scan duration")
	address := flag.String("address", "", "connect to this device and print its characteristics")
	save := flag.Bool("save", false, "with -address, remember the address in the configured mode store")
	daemons := flag.Bool("daemons", false, "list lampctl daemons advertising on the local network")
	flag.Parse()

	ctx := context.Background()

	if *daemons {
		listDaemons(ctx, *duration)
		return
	}

	transport, closeTransport, err := ble.Open(*transportKind, *adapterID)
	if err != nil {
		fail(err)
	}
	defer closeTransport()

	adapters, err := transport.Adapters()
	if err != nil {
		fail(err)
	}
	if len(adapters) == 0 {
		fail(ble.ErrNoAdapters)
	}
	adapter := adapters[0]

	fmt.Printf("Scanning on %s for %s...\n", adapter.ID(), *duration)
	devices, err := adapter.Scan(ctx, *duration)
	if err != nil {
		fail(err)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].RSSI > devices[j].RSSI })
	for _, d := range devices {
		fmt.Printf("  %-40s %4d dBm  %s\n", d.Address, d.RSSI, d.Name)
	}
	fmt.Printf("%d device(s)\n", len(devices))

	if *address == "" {
		return
	}

	var target *ble.Device
	for i := range devices {
		if devices[i].Address == *address {
			target = &devices[i]
			break
		}
	}
	if target == nil {
		fail(fmt.Errorf("%s not found in scan", *address))
	}

	connectCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	conn, err := adapter.Connect(connectCtx, *target)
	if err != nil {
		fail(err)
	}
	defer conn.Disconnect()

	attrs, err := conn.Attributes()
	if err != nil {
		fail(err)
	}
	printAttributes(conn, attrs)

	if *save {
		store, err := profile.Open(cfg.Store.Driver, cfg.Store.Path)
		if err != nil {
			fail(err)
		}
		defer store.Close()
		if err := store.SetAddress(ctx, *address); err != nil {
			fail(err)
		}
		fmt.Println("\nSaved address to", cfg.Store.Path)
	}
}

func printAttributes(conn ble.Connection, attrs []ble.Attribute) {
	known := lamp.DefaultCharacteristics()
	names := map[string]string{
		ble.NormalizeUUID(known.Light):       "light",
		ble.NormalizeUUID(known.Brightness):  "brightness",
		ble.NormalizeUUID(known.Temperature): "temperature",
		ble.NormalizeUUID(known.Color):       "color",
	}

	fmt.Println()
	service := ""
	for _, a := range attrs {
		if !ble.SameUUID(a.Service, service) {
			service = a.Service
			fmt.Printf("service %s\n", ble.NormalizeUUID(service))
		}
		label := names[ble.NormalizeUUID(a.Characteristic)]
		value, err := conn.Read(a.Service, a.Characteristic)
		if err != nil {
			fmt.Printf("  %s %-11s (read: %v)\n", ble.NormalizeUUID(a.Characteristic), label, err)
			continue
		}
		fmt.Printf("  %s %-11s % x\n", ble.NormalizeUUID(a.Characteristic), label, value)
	}
}

func listDaemons(ctx context.Context, timeout time.Duration) {
	fmt.Printf("Browsing %s for %s...\n", mdns.ServiceType, timeout)
	instances, err := mdns.Browse(ctx, timeout)
	if err != nil {
		fail(err)
	}
	for _, inst := range instances {
		fmt.Printf("  %-20s http://%s  lamp=%s\n", inst.Name, inst.Address, inst.Metadata["address"])
	}
	fmt.Printf("%d daemon(s)\n", len(instances))
}

// loadConfig reads the default config file when present so the tool scans
// with the same transport and writes to the same store as the daemon.
func loadConfig() *config.Config {
	cfg, err := config.Load(config.DefaultConfigPath())
	if err != nil {
		return config.Default()
	}
	return cfg
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
