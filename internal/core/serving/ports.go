package serving

import "strconv"

// =============================================================================
// Port Resolution
// =============================================================================

// UnknownPort is reported when a server's host port cannot be determined.
const UnknownPort = "unknown"

// HostBinding is one host-side binding of a container port.
type HostBinding struct {
	HostIP   string
	HostPort string
}

// PortMap maps "<port>/<proto>" keys to their host bindings.
type PortMap map[string][]HostBinding

// ResolveHostPort returns the first host port bound to ServerPortKey.
// It returns UnknownPort when the key is absent or the binding is malformed.
//
// Example:
//
//	ResolveHostPort(PortMap{"8000/tcp": {{HostPort: "9000"}}}) // returns "9000"
//	ResolveHostPort(PortMap{})                                 // returns "unknown"
func ResolveHostPort(ports PortMap) string {
	bindings := ports[ServerPortKey]
	if len(bindings) == 0 {
		return UnknownPort
	}
	port := bindings[0].HostPort
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return UnknownPort
	}
	return port
}
