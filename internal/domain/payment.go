package domain

// PaymentResult is the gateway response relayed by the backend when a payment
// record is created. Asynchronous instruments carry display artifacts (QR
// code, redirect URL) that the buyer completes outside the app.
type PaymentResult struct {
	PaymentID       string `json:"paymentId"`
	Status          string `json:"status"`
	PixQrCode       string `json:"pixQrCode,omitempty"`
	PixQrCodeBase64 string `json:"pixQrCodeBase64,omitempty"`
	TicketURL       string `json:"ticketUrl,omitempty"`
	InitPoint       string `json:"initPoint,omitempty"`
	SandboxInitPoint string `json:"sandboxInitPoint,omitempty"`
}

// RedirectURL returns the gateway URL the buyer should be sent to, preferring
// the sandbox endpoint when present (matches the gateway's test-mode contract).
func (p *PaymentResult) RedirectURL() string {
	if p.SandboxInitPoint != "" {
		return p.SandboxInitPoint
	}
	return p.InitPoint
}

// HasDisplayArtifact reports whether the result carries something the buyer
// must act on outside the app (PIX QR code, boleto ticket, gateway redirect).
func (p *PaymentResult) HasDisplayArtifact() bool {
	return p.PixQrCode != "" || p.PixQrCodeBase64 != "" || p.TicketURL != "" || p.InitPoint != "" || p.SandboxInitPoint != ""
}
