package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

type mailRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendMail delivers a transactional email through the HTTP mail API. Best
// effort by contract: callers run it in the background and a failure never
// rolls back task or assignment state. With MAIL_API_URL unset it is a no-op.
func SendMail(to, subject, text string) error {
	baseURL := os.Getenv("MAIL_API_URL")
	if baseURL == "" {
		return nil
	}
	apiKey := os.Getenv("MAIL_API_KEY")
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "noreply@edufoyer.com"
	}

	body, err := json.Marshal(mailRequest{From: from, To: to, Subject: subject, Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, baseURL+"/emails", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("mail API returned %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

// SendMailAsync fires SendMail in the background and logs any failure.
func SendMailAsync(to, subject, text string) {
	go func() {
		if err := SendMail(to, subject, text); err != nil {
			log.Printf("[mailer] send to %s: %v", to, err)
		}
	}()
}
