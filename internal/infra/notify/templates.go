package notify

import (
	"bytes"
	"html/template"

	"storefront/internal/usecase"
)

var (
	orderConfirmationTmpl = template.Must(template.New("order_confirmation").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #16a34a;">Order Confirmed!</h2>
  <p>Your order has been successfully placed.</p>
  <div style="background-color: #f3f4f6; padding: 20px; margin: 20px 0; border-radius: 5px;">
    <p><strong>Order Number:</strong> {{.OrderNumber}}</p>
    <p><strong>Total Amount:</strong> ${{.TotalAmount.StringFixed 2}}</p>
  </div>
  <p>We'll send you another email when your order ships.</p>
</div>`))

	statusChangedTmpl = template.Must(template.New("status_changed").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Order Update</h2>
  <p>Your order <strong>{{.OrderNumber}}</strong> has been updated.</p>
  <p><strong>Order status:</strong> {{.AfterOrderStatus}}</p>
  <p><strong>Payment status:</strong> {{.AfterPaymentStatus}}</p>
</div>`))

	contactAdminTmpl = template.Must(template.New("contact_admin").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">New Contact Form Submission</h2>
  <p><strong>Name:</strong> {{.Name}}</p>
  <p><strong>Email:</strong> {{.Email}}</p>
  <p><strong>Subject:</strong> {{.Subject}}</p>
  <h3>Message:</h3>
  <p style="white-space: pre-wrap;">{{.Message}}</p>
</div>`))

	contactAckTmpl = template.Must(template.New("contact_ack").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #2563eb;">Thank you for your message!</h2>
  <p>Dear {{.Name}},</p>
  <p>We have received your message and will get back to you as soon as possible.</p>
  <p style="white-space: pre-wrap;">{{.Message}}</p>
</div>`))
)

func render(t *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func orderConfirmationMail(ev usecase.OrderPlacedEvent) (Mail, error) {
	body, err := render(orderConfirmationTmpl, ev)
	if err != nil {
		return Mail{}, err
	}
	return Mail{To: ev.Email, Subject: "Order Confirmation - " + ev.OrderNumber, HTML: body}, nil
}

func statusChangedMail(ev usecase.OrderStatusChangedEvent) (Mail, error) {
	body, err := render(statusChangedTmpl, ev)
	if err != nil {
		return Mail{}, err
	}
	return Mail{To: ev.Email, Subject: "Order Update - " + ev.OrderNumber, HTML: body}, nil
}

func contactMails(adminEmail string, msg usecase.ContactMessage) ([]Mail, error) {
	adminBody, err := render(contactAdminTmpl, msg)
	if err != nil {
		return nil, err
	}
	ackBody, err := render(contactAckTmpl, msg)
	if err != nil {
		return nil, err
	}
	return []Mail{
		{To: adminEmail, Subject: "Contact Form: " + msg.Subject, HTML: adminBody},
		{To: msg.Email, Subject: "Thank you for contacting us", HTML: ackBody},
	}, nil
}
