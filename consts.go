package qrtrack

const (
	// AttributeCapacity is the number of slots in the attribute table.
	AttributeCapacity = 365

	// AttributeFile is the default backing file of the attribute table.
	AttributeFile = "attributes.bin"
)

// Marker is searched for at boot. Its presence means the attribute table
// was already populated by an earlier run.
var Marker = NewAttribute("Flying Fish Tea Discount", "20%")
