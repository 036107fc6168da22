package checkout

// ActionType discriminates the secondary-step kinds a payments or details
// response can demand. Exactly one variant is active per Action; the variant
// determines which delegate takes over the flow.
type ActionType string

const (
	ActionTypeRedirect ActionType = "redirect"
	ActionTypeAwait    ActionType = "await"
	ActionTypeVoucher  ActionType = "voucher"
	ActionTypeQRCode   ActionType = "qrCode"
	ActionTypeThreeDS2 ActionType = "threeDS2"
	ActionTypeSDK      ActionType = "sdk"
)

// Action is a processor-issued instruction requiring a secondary UI or
// network step before a payment can complete. The populated payload fields
// depend on Type; PaymentData is the opaque continuation token the processor
// expects echoed back on the details call.
type Action struct {
	Type              ActionType `json:"type"`
	PaymentMethodType string     `json:"paymentMethodType,omitempty"`
	PaymentData       string     `json:"paymentData,omitempty"`

	// Redirect payload.
	URL    string            `json:"url,omitempty"`
	Method string            `json:"method,omitempty"`
	Data   map[string]string `json:"data,omitempty"`

	// QR code payload.
	QRCodeData string `json:"qrCodeData,omitempty"`

	// Voucher payload.
	Reference          string  `json:"reference,omitempty"`
	InitialAmount      *Amount `json:"initialAmount,omitempty"`
	TotalAmount        *Amount `json:"totalAmount,omitempty"`
	ExpiresAt          string  `json:"expiresAt,omitempty"`
	MerchantName       string  `json:"merchantName,omitempty"`
	MerchantReference  string  `json:"merchantReference,omitempty"`
	AlternativeRef     string  `json:"alternativeReference,omitempty"`
	DownloadURL        string  `json:"downloadUrl,omitempty"`
	Instructions       string  `json:"instructionsUrl,omitempty"`
	CollectionInstitut string  `json:"collectionInstitutionNumber,omitempty"`

	// 3-D Secure 2 payload.
	Token   string `json:"token,omitempty"`
	Subtype string `json:"subtype,omitempty"`

	// Native SDK payload (e.g. WeChat Pay).
	SDKData map[string]string `json:"sdkData,omitempty"`
}

// ActionComponentData is the payload sent to the submit-additional-details
// endpoint once a secondary step produced a result.
type ActionComponentData struct {
	Details     map[string]any `json:"details"`
	PaymentData string         `json:"paymentData,omitempty"`
}

// Detail keys produced by the action delegates.
const (
	DetailKeyPayload              = "payload"
	DetailKeyRedirectResult       = "redirectResult"
	DetailKeyPaymentResult        = "PaRes"
	DetailKeyMD                   = "MD"
	DetailKeyReturnURLQueryString = "returnUrlQueryString"
	DetailKeyThreeDSResult        = "threeDSResult"
	DetailKeyResultCode           = "resultCode"
)
