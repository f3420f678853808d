package domain

const (
	// Unknown marks a string field that could not be recovered from oracle output.
	Unknown = "Unknown"
	// DefaultDeliveryDays is used when no delivery window could be recovered.
	DefaultDeliveryDays = 7
)

// CustomerRequest is the canonical intent extracted from a customer message.
// Absent values are represented by sentinels, never by zero values.
type CustomerRequest struct {
	Model        string `json:"model"`
	Location     string `json:"location"`
	Color        string `json:"color"`
	DeliveryDays int    `json:"deliveryDays"`
}

// UnknownRequest returns a request with every field at its sentinel.
func UnknownRequest() CustomerRequest {
	return CustomerRequest{
		Model:        Unknown,
		Location:     Unknown,
		Color:        Unknown,
		DeliveryDays: DefaultDeliveryDays,
	}
}

// IsUnrecognized reports whether all four fields are at their sentinel values.
func (r CustomerRequest) IsUnrecognized() bool {
	return r.Model == Unknown &&
		r.Location == Unknown &&
		r.Color == Unknown &&
		r.DeliveryDays == DefaultDeliveryDays
}

// AllocationOffer is the oracle's proposal for a specific inventory unit.
type AllocationOffer struct {
	CustomerRequest
	UUID string `json:"uuid"`
}
