//go:build linux

package cmdlets

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// interfaceAddr returns the first IPv4 address on the named link.
func interfaceAddr(name string) (string, error) {
	link, err := netlink.LinkByName(name)
	if err != nil {
		return "", err
	}
	addrs, err := netlink.AddrList(link, netlink.FAMILY_V4)
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if a.IPNet != nil && a.IP.IsGlobalUnicast() {
			return a.IP.String(), nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, errNoAddress)
}
