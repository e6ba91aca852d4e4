package domain

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	events "github.com/Kedar-sonavani/Kalashree-Collection/pkg/domain"
	"github.com/shopspring/decimal"
)

// Message is one outgoing email with an HTML body.
type Message struct {
	To      string
	Subject string
	HTML    string
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
}).Parse(`
<h1>Thank you for your order, {{.CustomerName}}!</h1>
<p>Order <b>{{.OrderID}}</b> has been received and will be processed shortly.</p>
<table>
{{- range .Items}}
	<tr><td>{{.Title}}</td><td>x{{.Quantity}}</td><td>&#8377;{{money .Price}}</td></tr>
{{- end}}
</table>
<p>Total: <b>&#8377;{{money .TotalPrice}}</b></p>
<p>Shipping to: {{.ShippingAddress}}</p>
`))

var statusTmpl = template.Must(template.New("status").Parse(`
<h1>Hello {{.Name}},</h1>
<p>Your order <b>{{.OrderID}}</b> is now <b>{{.Status}}</b>.</p>
{{- if .Cancelled}}
<p>If you did not request the cancellation, please reply to this email.</p>
{{- end}}
`))

// OrderConfirmation renders the email sent once an order is placed.
func OrderConfirmation(event events.OrderPlacedEvent) (Message, error) {
	var buf bytes.Buffer
	if err := confirmationTmpl.Execute(&buf, event); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}

	return Message{
		To:      event.CustomerEmail,
		Subject: "Your Kalashree order " + shortID(event.OrderID) + " is confirmed",
		HTML:    buf.String(),
	}, nil
}

// StatusUpdate renders the email sent when an admin moves an order along.
func StatusUpdate(event events.OrderStatusChangedEvent) (Message, error) {
	var buf bytes.Buffer
	err := statusTmpl.Execute(&buf, map[string]any{
		"Name":      event.CustomerName,
		"OrderID":   event.OrderID,
		"Status":    event.To,
		"Cancelled": event.To == "cancelled",
	})
	if err != nil {
		return Message{}, fmt.Errorf("render status update: %w", err)
	}

	return Message{
		To:      event.CustomerEmail,
		Subject: fmt.Sprintf("Your Kalashree order %s is %s", shortID(event.OrderID), event.To),
		HTML:    buf.String(),
	}, nil
}

func shortID(id string) string {
	head, _, _ := strings.Cut(id, "-")
	return strings.ToUpper(head)
}
