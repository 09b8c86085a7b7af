package buckaroo

import (
	"encoding/json"
	"net"

	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/gateway"
	"buckaroopay/internal/provider"
)

type returnURLs struct {
	continueURL string
	cancelURL   string
	errorURL    string
	callbackURL string
}

// buildTransaction composes the create-transaction request for an order.
// The order number doubles as invoice, order reference and description.
func buildTransaction(order payment.Order, currency string, urls returnURLs, client provider.ClientInfo) gateway.TransactionRequest {
	return gateway.TransactionRequest{
		Currency:             currency,
		AmountDebit:          json.Number(order.TotalWithTax.StringFixed(2)),
		Invoice:              order.Number,
		Order:                order.Number,
		Description:          order.Number,
		ClientIP:             clientIP(client.IP),
		ClientUserAgent:      client.UserAgent,
		ReturnURL:            urls.continueURL,
		ReturnURLCancel:      urls.cancelURL,
		ReturnURLError:       urls.errorURL,
		ReturnURLReject:      urls.cancelURL,
		PushURL:              urls.callbackURL,
		PushURLFailure:       urls.callbackURL,
		ContinueOnIncomplete: gateway.ContinueRedirectToHTML,
		StartRecurrent:       false,
		Services:             gateway.Services{ServiceList: []gateway.Service{}},
	}
}

func clientIP(addr string) *gateway.ClientIP {
	ip := net.ParseIP(addr)
	if ip == nil {
		return nil
	}
	if ip.To4() != nil {
		return &gateway.ClientIP{Type: gateway.IPv4, Address: ip.String()}
	}
	return &gateway.ClientIP{Type: gateway.IPv6, Address: ip.String()}
}
