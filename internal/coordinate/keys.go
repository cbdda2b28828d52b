package coordinate

// Well-known state document keys shared between provisioning passes and the
// ephemeral provisioner. Each document holds a single field named after the
// document, except StatusDocument which accumulates month-bucketed progress
// fields.
const (
	KeyInstanceIDs       = "instance-ids"
	KeyNodeIPs           = "node-ips"
	KeyFaultDomainIDs    = "fault-domain-ids"
	KeyFloatIPs          = "float-ips"
	KeyFloatingIPCount   = "floating-ip-count"
	KeyBucketNames       = "bucket-names"
	KeyBucketURIs        = "bucket-uris"
	KeyClusterSecrets    = "cluster-secrets-name"
	KeyClusterType       = "cluster-type"
	KeyCreationVersion   = "creation-version"
	KeyInstalledVersion  = "installed-version"
	KeyCreationNumberAZs = "creation-number-azs"
	KeySoftCapacityLimit = "soft-capacity-limit"
	KeyTunables          = "tunables"
	KeyUUID              = "uuid"
	KeyNewCluster        = "new-cluster"

	// StatusDocument is where the provisioner reports progress.
	StatusDocument = "last-run-status"
)

// MetadataKeys lists every placeholder document the infrastructure pass
// creates before the provisioner runs. Readers may rely on each of these
// existing, holding at least the placeholder value.
var MetadataKeys = []string{
	KeyInstanceIDs,
	KeyNodeIPs,
	KeyFaultDomainIDs,
	KeyFloatIPs,
	KeyFloatingIPCount,
	KeyBucketNames,
	KeyBucketURIs,
	KeyClusterSecrets,
	KeyClusterType,
	KeyCreationVersion,
	KeyInstalledVersion,
	KeyCreationNumberAZs,
	KeySoftCapacityLimit,
	KeyTunables,
	KeyUUID,
	KeyNewCluster,
	StatusDocument,
}
