package booking

import "fmt"

// ServiceType is the kind of home service a booking requests and a provider offers.
type ServiceType string

const (
	ServiceCleaning        ServiceType = "cleaning"
	ServicePlumbing        ServiceType = "plumbing"
	ServiceElectrical      ServiceType = "electrical"
	ServiceCarpentry       ServiceType = "carpentry"
	ServicePainting        ServiceType = "painting"
	ServiceGardening       ServiceType = "gardening"
	ServiceApplianceRepair ServiceType = "appliance_repair"
)

var serviceTypeLabels = map[ServiceType]string{
	ServiceCleaning:        "Home Cleaning",
	ServicePlumbing:        "Plumbing",
	ServiceElectrical:      "Electrical",
	ServiceCarpentry:       "Carpentry",
	ServicePainting:        "Painting",
	ServiceGardening:       "Gardening",
	ServiceApplianceRepair: "Appliance Repair",
}

func (t ServiceType) IsValid() bool {
	_, ok := serviceTypeLabels[t]
	return ok
}

// Label returns the display name of the service type.
func (t ServiceType) Label() string {
	return serviceTypeLabels[t]
}

func (t ServiceType) String() string {
	return string(t)
}

// ParseServiceType converts a string to a ServiceType, returning an error if invalid.
func ParseServiceType(s string) (ServiceType, error) {
	t := ServiceType(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid service type: %s", s)
	}
	return t, nil
}
