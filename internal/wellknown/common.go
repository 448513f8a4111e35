package wellknown

const (
	// AppName is used for the MQTT client id, ConfigMap labels and metric prefixes.
	AppName = "autodark"

	// LabelManagedBy is the label key for managed-by.
	LabelManagedBy = "app.kubernetes.io/managed-by"

	// LabelUser is the label key carrying the user a settings ConfigMap belongs to.
	LabelUser = "autodark.ardikabs.com/user"

	// DefaultUser is the user scope used when none is configured.
	DefaultUser = "0"

	// DefaultStartTime is the default window start (HH:MM) when none is stored.
	DefaultStartTime = "22:00"

	// DefaultEndTime is the default window end (HH:MM) when none is stored.
	DefaultEndTime = "06:00"

	// LocaltimePath is the zoneinfo link describing the host's local zone.
	LocaltimePath = "/etc/localtime"
)
