package module

import "opsroute/internal/services/route/domain"

// Ports holds the ports exposed by the route module
type Ports struct {
	Router domain.ServicePort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
