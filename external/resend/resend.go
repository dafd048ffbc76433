package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type ResendMailer struct {
	apiKey  string
	from    string
	client  *http.Client
	baseURL string
}

func NewResendMailer(apiKey, from string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("RESEND_API_KEY not set")
	}

	return &ResendMailer{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: "https://api.resend.com",
	}, nil
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendOrderReceipt mails the order confirmation. Callers treat this as
// best-effort: a failure here never rolls back the order.
func (m *ResendMailer) SendOrderReceipt(
	ctx context.Context,
	toEmail string,
	orderNumber string,
	total string,
) error {
	body := sendRequest{
		From:    m.from,
		To:      []string{toEmail},
		Subject: fmt.Sprintf("Your L'Essence order %s", orderNumber),
		HTML: `
			<p>Thank you for your order!</p>
			<p>Order <strong>` + orderNumber + `</strong> has been confirmed.</p>
			<p>Total charged: <strong>` + total + `</strong></p>
		`,
	}

	b, _ := json.Marshal(body)

	req, _ := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		m.baseURL+"/emails",
		bytes.NewBuffer(b),
	)

	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		return errors.New(
			"failed to send order receipt: " + buf.String(),
		)
	}

	return nil
}
