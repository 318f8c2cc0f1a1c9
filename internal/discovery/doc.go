// Package discovery finds keycalc servers on the local network via mDNS.
//
// A server started with `keycalc serve` registers itself as a
// "_keycalc._tcp" service with its version in the TXT record. `keycalc scan`
// browses for that service type and lists what answered.
//
// # Usage Example
//
//	ad, err := discovery.Advertise("kitchen", 7464, map[string]string{"version": "v0.3.0"})
//	if err != nil {
//	    return err
//	}
//	defer ad.Shutdown()
//
//	calculators, err := discovery.NewScanner().Scan(ctx)
//	for _, c := range calculators {
//	    fmt.Println(c.Instance, c.Addr())
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Servers must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
