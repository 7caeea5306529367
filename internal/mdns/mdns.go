// Package mdns advertises the lampctl HTTP API on the local network and
// finds other advertising instances.
package mdns

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	ServiceType = "_lampctl._tcp"
	Domain      = "local."
)

// Instance is a lampctl daemon found on the network.
type Instance struct {
	Name     string
	Address  string // host:port of the HTTP API
	Metadata map[string]string
}

// Advertise registers the HTTP API under name and blocks until ctx is
// cancelled. Call it in a goroutine.
func Advertise(ctx context.Context, logger *slog.Logger, name string, port int, metadata map[string]string) error {
	server, err := zeroconf.Register(name, ServiceType, Domain, port, txtRecords(metadata), nil)
	if err != nil {
		return fmt.Errorf("mdns register: %w", err)
	}

	logger.Info("[MDNS] advertising", "name", name, "service", ServiceType, "port", port)
	<-ctx.Done()
	server.Shutdown()
	logger.Info("[MDNS] stopped")
	return nil
}

// Browse collects instances answering within timeout.
func Browse(ctx context.Context, timeout time.Duration) ([]Instance, error) {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("mdns resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var (
		mu        sync.Mutex
		instances []Instance
		wg        sync.WaitGroup
	)

	browseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for entry := range entries {
			inst := entryToInstance(entry)
			mu.Lock()
			instances = append(instances, inst)
			mu.Unlock()
		}
	}()

	if err := resolver.Browse(browseCtx, ServiceType, Domain, entries); err != nil {
		cancel()
		wg.Wait()
		return nil, fmt.Errorf("mdns browse: %w", err)
	}

	<-browseCtx.Done()
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	return append([]Instance(nil), instances...), nil
}

// txtRecords renders metadata as sorted key=value strings.
func txtRecords(metadata map[string]string) []string {
	txt := make([]string, 0, len(metadata))
	for k, v := range metadata {
		txt = append(txt, k+"="+v)
	}
	sort.Strings(txt)
	return txt
}

func parseTXTRecords(txt []string) map[string]string {
	m := make(map[string]string, len(txt))
	for _, t := range txt {
		if k, v, ok := strings.Cut(t, "="); ok {
			m[k] = v
		}
	}
	return m
}

func entryToInstance(entry *zeroconf.ServiceEntry) Instance {
	var address string
	if len(entry.AddrIPv4) > 0 {
		address = fmt.Sprintf("%s:%d", entry.AddrIPv4[0], entry.Port)
	} else if len(entry.AddrIPv6) > 0 {
		address = fmt.Sprintf("[%s]:%d", entry.AddrIPv6[0], entry.Port)
	}
	return Instance{
		Name:     entry.ServiceRecord.Instance,
		Address:  address,
		Metadata: parseTXTRecords(entry.Text),
	}
}
