package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
)

// Sender delivers one SMS message.
type Sender interface {
	Send(phone, message string) error
}

// SMSService posts messages to an HTTP SMS gateway. With no gateway
// configured it logs the message instead, which is how local and test
// environments run.
type SMSService struct {
	apiURL   string
	apiToken string
	sender   string
}

// NewSMSService creates a new SMSService.
func NewSMSService(apiURL, apiToken, sender string) *SMSService {
	return &SMSService{
		apiURL:   apiURL,
		apiToken: apiToken,
		sender:   sender,
	}
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

// Send delivers a message to the given phone number.
func (s *SMSService) Send(phone, message string) error {
	if s.apiURL == "" {
		log.Printf("[SMS] to %s: %s", phone, message)
		return nil
	}

	body, err := json.Marshal(smsPayload{
		To:      phone,
		From:    s.sender,
		Message: message,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Printf("[SMS] failed to send message: %v", err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		log.Printf("[SMS] unexpected status: %d", resp.StatusCode)
		return fmt.Errorf("sms gateway returned status %d", resp.StatusCode)
	}

	return nil
}
