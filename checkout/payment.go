package checkout

// Amount represents a monetary value in minor units.
type Amount struct {
	Currency string `json:"currency"`
	Value    int64  `json:"value"`
}

// Order identifies a partial-payment order on requests.
type Order struct {
	PSPReference string `json:"pspReference"`
	OrderData    string `json:"orderData"`
}

// OrderResponse is the order state echoed back by the processor.
type OrderResponse struct {
	PSPReference    string  `json:"pspReference"`
	OrderData       string  `json:"orderData"`
	Amount          *Amount `json:"amount,omitempty"`
	RemainingAmount *Amount `json:"remainingAmount,omitempty"`
}

// Request converts an order response into its request form.
func (o *OrderResponse) Request() *Order {
	if o == nil {
		return nil
	}
	return &Order{PSPReference: o.PSPReference, OrderData: o.OrderData}
}

// IsNonFullyPaid reports whether the order still has an outstanding amount.
func (o *OrderResponse) IsNonFullyPaid() bool {
	return o != nil && o.RemainingAmount != nil && o.RemainingAmount.Value > 0
}

// PaymentMethodDetails is the method-specific payload collected by a payment
// form. The core treats it as opaque apart from the type discriminator.
type PaymentMethodDetails map[string]any

// Type returns the payment method type discriminator, if present.
func (d PaymentMethodDetails) Type() string {
	if t, ok := d["type"].(string); ok {
		return t
	}
	return ""
}

// PaymentComponentData is the submittable portion of a component state.
type PaymentComponentData struct {
	PaymentMethod         PaymentMethodDetails `json:"paymentMethod"`
	Order                 *Order               `json:"order,omitempty"`
	Amount                *Amount              `json:"amount,omitempty"`
	StorePaymentMethod    *bool                `json:"storePaymentMethod,omitempty"`
	ShopperReference      string               `json:"shopperReference,omitempty"`
	ReturnURL             string               `json:"returnUrl,omitempty"`
	SupportNativeRedirect bool                 `json:"supportNativeRedirect,omitempty"`
}

// ComponentState combines the collected payment data with its readiness
// flags. A state is submittable only when both flags hold.
type ComponentState struct {
	Data         PaymentComponentData `json:"data"`
	IsInputValid bool                 `json:"isInputValid"`
	IsReady      bool                 `json:"isReady"`
}

// IsValid reports whether the state can be submitted.
func (s ComponentState) IsValid() bool {
	return s.IsInputValid && s.IsReady
}
