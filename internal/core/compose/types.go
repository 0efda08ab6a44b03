package compose

// =============================================================================
// Project - Main Output Type
// =============================================================================

// Project summarizes a compose file after interpolation.
// It is decoupled from compose-go types and sorted for stable output.
type Project struct {
	Services []Service `json:"services"`
	Networks []Network `json:"networks,omitempty"`
	Volumes  []Volume  `json:"volumes,omitempty"`
}

// Service represents a single service definition.
type Service struct {
	Name      string   `json:"name"`
	Image     string   `json:"image,omitempty"`
	Ports     []Port   `json:"ports,omitempty"`
	Volumes   []string `json:"volumes,omitempty"` // named volume sources only
	DependsOn []string `json:"depends_on,omitempty"`
}

// Port represents a port mapping.
type Port struct {
	Target    uint32 `json:"target"`              // Container port
	Published uint32 `json:"published,omitempty"` // Host port (0 = dynamic)
	Protocol  string `json:"protocol,omitempty"`  // tcp, udp
}

// Network represents a network definition.
type Network struct {
	Name     string `json:"name"`
	External bool   `json:"external"`
}

// Volume represents a named volume definition.
type Volume struct {
	Name     string `json:"name"`
	External bool   `json:"external"`
}

// Service looks up a service by name.
func (p *Project) Service(name string) (Service, bool) {
	for _, svc := range p.Services {
		if svc.Name == name {
			return svc, true
		}
	}
	return Service{}, false
}

// HasVolume reports whether the project declares a top-level named volume.
func (p *Project) HasVolume(name string) bool {
	for _, v := range p.Volumes {
		if v.Name == name {
			return true
		}
	}
	return false
}
