// internal/sim/modbus/identity.go
package modbus

// Object ids from the read-device-identification object table.
const (
	objVendorName         = 0x00
	objProductCode        = 0x01
	objMajorMinorRevision = 0x02
	objVendorURL          = 0x03
	objProductName        = 0x04
	objModelName          = 0x05
)

// Identity is the catalog served over FC 0x2B / MEI 0x0E. The first
// three objects form the mandatory basic category, the remaining ones
// the regular category.
type Identity struct {
	VendorName         string
	ProductCode        string
	MajorMinorRevision string
	VendorURL          string
	ProductName        string
	ModelName          string
}

// DefaultIdentity describes the synthetic inverter/BMS device.
func DefaultIdentity() Identity {
	return Identity{
		VendorName:         "DemoCorp",
		ProductCode:        "DEMO",
		MajorMinorRevision: "1.0",
		VendorURL:          "https://example.com",
		ProductName:        "ModbusTCP Inverter/BMS Simulator",
		ModelName:          "SIM-INV-01",
	}
}

type identityObject struct {
	id    byte
	value string
}

func (id Identity) basic() []identityObject {
	return []identityObject{
		{objVendorName, id.VendorName},
		{objProductCode, id.ProductCode},
		{objMajorMinorRevision, id.MajorMinorRevision},
	}
}

func (id Identity) regular() []identityObject {
	return append(id.basic(),
		identityObject{objVendorURL, id.VendorURL},
		identityObject{objProductName, id.ProductName},
		identityObject{objModelName, id.ModelName},
	)
}

func (id Identity) object(objectID byte) (identityObject, bool) {
	for _, obj := range id.regular() {
		if obj.id == objectID {
			return obj, true
		}
	}
	return identityObject{}, false
}
