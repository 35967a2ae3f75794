// Package whatsapp delivers report documents over the WhatsApp Cloud API:
// upload the spreadsheet as media, then send a document message referencing
// the media id.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"
	"time"
)

const xlsxMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Client struct {
	baseURL string
	phoneID string
	token   string
	http    *http.Client
}

// NewClientFromEnv reads WHATSAPP_TOKEN and WHATSAPP_PHONE_NUMBER_ID.
// Missing credentials are an error the caller surfaces; nothing is sent.
func NewClientFromEnv() (*Client, error) {
	token := strings.TrimSpace(os.Getenv("WHATSAPP_TOKEN"))
	phoneID := strings.TrimSpace(os.Getenv("WHATSAPP_PHONE_NUMBER_ID"))
	if token == "" || phoneID == "" {
		return nil, errors.New("whatsapp credentials missing: set WHATSAPP_TOKEN and WHATSAPP_PHONE_NUMBER_ID")
	}
	baseURL := strings.TrimSpace(os.Getenv("WHATSAPP_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v20.0"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		phoneID: phoneID,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SanitizeNumber reduces a recipient to a bare E.164 digit string.
func SanitizeNumber(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// UploadMedia uploads a spreadsheet payload and returns the media id.
func (c *Client) UploadMedia(ctx context.Context, filename string, data []byte) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(data); err != nil {
		return "", err
	}
	if err := mw.WriteField("messaging_product", "whatsapp"); err != nil {
		return "", err
	}
	if err := mw.WriteField("type", xlsxMimeType); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	endpoint := fmt.Sprintf("%s/%s/media", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var parsed struct {
		ID string `json:"id"`
	}
	if err := c.do(req, &parsed); err != nil {
		return "", err
	}
	if parsed.ID == "" {
		return "", errors.New("invalid media upload response")
	}
	return parsed.ID, nil
}

// SendDocument sends an uploaded media id as a document message and returns
// the message id.
func (c *Client) SendDocument(ctx context.Context, to, mediaID, filename string) (string, error) {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "document",
		"document": map[string]string{
			"id":       mediaID,
			"filename": filename,
		},
	}
	return c.sendMessage(ctx, payload)
}

// SendText sends a plain text message. Kept as a credentials/recipient
// debugging path.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "text",
		"text":              map[string]string{"body": body},
	}
	return c.sendMessage(ctx, payload)
}

func (c *Client) sendMessage(ctx context.Context, payload map[string]interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	var parsed struct {
		Messages []struct {
			ID string `json:"id"`
		} `json:"messages"`
	}
	if err := c.do(req, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Messages) == 0 {
		return "", errors.New("invalid message response")
	}
	return parsed.Messages[0].ID, nil
}

func (c *Client) do(req *http.Request, dest interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("whatsapp api error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return json.Unmarshal(body, dest)
}
