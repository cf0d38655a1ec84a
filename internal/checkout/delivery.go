package checkout

// DeliveryOption is one of the static delivery tiers. Price is in the
// smallest currency unit.
type DeliveryOption struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Days  string `json:"days"`
}

var deliveryOptions = []DeliveryOption{
	{ID: "standard", Name: "Standard Delivery", Price: 599, Days: "3-5 business days"},
	{ID: "express", Name: "Express Delivery", Price: 1299, Days: "1-2 business days"},
	{ID: "next-day", Name: "Next Day Delivery", Price: 1999, Days: "Next business day"},
}

// DeliveryOptions lists the available tiers; the first one is the default.
func DeliveryOptions() []DeliveryOption {
	out := make([]DeliveryOption, len(deliveryOptions))
	copy(out, deliveryOptions)
	return out
}

func deliveryByID(id string) (DeliveryOption, bool) {
	for _, opt := range deliveryOptions {
		if opt.ID == id {
			return opt, true
		}
	}
	return DeliveryOption{}, false
}

// Payment methods accepted at checkout.
const (
	PaymentTransfer = "transfer"
	PaymentEwallet  = "ewallet"
	PaymentCredit   = "credit"
	PaymentCOD      = "cod"
)

var paymentMethods = []string{PaymentTransfer, PaymentEwallet, PaymentCredit, PaymentCOD}

func PaymentMethods() []string {
	out := make([]string, len(paymentMethods))
	copy(out, paymentMethods)
	return out
}

func validPaymentMethod(method string) bool {
	for _, m := range paymentMethods {
		if m == method {
			return true
		}
	}
	return false
}
