package monitor

import "kuma-gateway/internals/kuma"

// applyCreateDefaults fills in the values the upstream server expects
// on a new HTTP monitor when the caller leaves them out.
func applyCreateDefaults(m kuma.Monitor) {
	setDefault(m, "type", "http")
	setDefault(m, "method", "GET")
	setDefault(m, "interval", 300)
	setDefault(m, "maxretries", 3)
	setDefault(m, "retryInterval", 60)
	setDefault(m, "timeout", 30)
	setDefault(m, "active", true)
	if _, ok := m["accepted_statuscodes"]; !ok {
		m["accepted_statuscodes"] = []string{"200-299"}
	}
}

func setDefault(m kuma.Monitor, key string, value any) {
	if _, ok := m[key]; !ok {
		m[key] = value
	}
}
