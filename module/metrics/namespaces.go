package metrics

// Prometheus metric namespaces
const (
	namespaceEpochs = "epochs"
)

// Network subsystems represent the various layers of the epoch machinery.
const (
	subsystemController  = "controller"
	subsystemCoordinator = "dkg"
)
