package metrics

import "strings"

// Prefix namespaces every metric exported by the service.
const Prefix = "jarvis"

// MetricName prefixes name with the service namespace.
func MetricName(name string) string {
	if strings.HasPrefix(name, Prefix+"_") {
		return name
	}
	return Prefix + "_" + name
}

// MetricNameWithSubsystem builds <prefix>_<subsystem>_<name>.
func MetricNameWithSubsystem(subsystem, name string) string {
	subsystem = strings.Trim(subsystem, "_")
	if name == "" {
		return MetricName(subsystem)
	}
	return MetricName(subsystem + "_" + name)
}
