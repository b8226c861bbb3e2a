package tunnel

import "github.com/netguard/fabric/internal/incident"

var supportedTETypes = map[incident.TEType]bool{
	incident.TESRMPLS: true,
	incident.TESRv6:   true,
	incident.TERSVPTE: true,
}

// DefaultTEType is used when neither the requested type nor device
// capabilities yield a supported technology.
const DefaultTEType = incident.TESRMPLS

// DeviceCapabilities reports what TE technologies a head-end supports, in
// the controller's own preference order.
type DeviceCapabilities struct {
	SupportedTE []incident.TEType
}

// DetectTEType picks the tunnel technology: prefer the service's existing
// TE type when it is one this system supports, otherwise the head-end's
// first reported capability, otherwise SR-MPLS.
func DetectTEType(requested incident.TEType, caps DeviceCapabilities) incident.TEType {
	if requested != "" && supportedTETypes[requested] {
		return requested
	}
	for _, te := range caps.SupportedTE {
		if supportedTETypes[te] {
			return te
		}
	}
	return DefaultTEType
}
