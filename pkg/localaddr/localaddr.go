// Package localaddr discovers the address this host is reachable on
// from the local network. Used only at server setup.
package localaddr

import "net"

// IP - returns the preferred outbound IPv4 address of this host.
// Falls back to walking the interfaces and finally to loopback.
func IP() string {
	// The dial never sends a packet, it only makes the kernel pick a route.
	if conn, err := net.Dial("udp4", "8.8.8.8:80"); err == nil {
		defer conn.Close()
		if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
			return addr.IP.String()
		}
	}

	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, a := range addrs {
			ipnet, ok := a.(*net.IPNet)
			if !ok || ipnet.IP.IsLoopback() {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}

	return "127.0.0.1"
}
