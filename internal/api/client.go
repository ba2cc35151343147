package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/equipeadalove/aduana/internal/model"
)

// Client wraps the backend endpoints.
type Client struct {
	req *Requester
}

// NewClient creates a client over r.
func NewClient(r *Requester) *Client {
	return &Client{req: r}
}

// Requester returns the underlying request helper.
func (c *Client) Requester() *Requester {
	return c.req
}

type itemsPayload[T any] struct {
	Items []T `json:"items"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.req.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/login",
		Body:      Form(url.Values{"username": {email}, "password": {password}}),
		Anonymous: true,
	})
	if err != nil {
		return "", err
	}

	var out struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
		AccessToken string `json:"access_token"`
	}
	if err := resp.Decode(&out); err != nil {
		return "", err
	}

	token := out.Data.AccessToken
	if token == "" {
		token = out.AccessToken
	}
	if token == "" {
		return "", fmt.Errorf("%w: no access token", ErrMalformedResponse)
	}
	return token, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, reg model.Registration) error {
	_, err := c.req.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/users",
		Body:      JSON(reg),
		Anonymous: true,
	})
	return err
}

// RequestPasswordRecovery asks the backend to send a recovery code to email.
func (c *Client) RequestPasswordRecovery(ctx context.Context, email string) error {
	_, err := c.req.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/password-recovery",
		Body:      JSON(map[string]string{"email": email}),
		Anonymous: true,
	})
	return err
}

// VerifyRecoveryCode checks a recovery code.
func (c *Client) VerifyRecoveryCode(ctx context.Context, email, code string) error {
	_, err := c.req.Do(ctx, Request{
		Method:    http.MethodPost,
		Path:      "/auth/verify-token",
		Body:      JSON(map[string]string{"email": email, "token": code}),
		Anonymous: true,
	})
	return err
}

// ResetPassword sets a new password using a verified recovery code.
func (c *Client) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	_, err := c.req.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/auth/reset-password",
		Body: JSON(map[string]string{
			"email":        email,
			"token":        code,
			"new_password": newPassword,
		}),
		Anonymous: true,
	})
	return err
}

// UpdatePassword changes the logged-in user's password.
func (c *Client) UpdatePassword(ctx context.Context, current, newPassword string) error {
	_, err := c.req.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   "/user/update-password",
		Body: JSON(map[string]string{
			"current_password": current,
			"new_password":     newPassword,
		}),
	})
	return err
}

// Profile returns the logged-in user's profile.
func (c *Client) Profile(ctx context.Context) (model.UserProfile, error) {
	var profile model.UserProfile
	resp, err := c.req.Do(ctx, Request{Method: http.MethodGet, Path: "/user/profile"})
	if err != nil {
		return profile, err
	}
	err = resp.Decode(&profile)
	return profile, err
}

// Transactions lists the user's transactions.
func (c *Client) Transactions(ctx context.Context) ([]model.TransactionSummary, error) {
	resp, err := c.req.Do(ctx, Request{Method: http.MethodGet, Path: "/transacoes"})
	if err != nil {
		return nil, err
	}
	var out []model.TransactionSummary
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction fetches one transaction with its saved items.
func (c *Client) GetTransaction(ctx context.Context, id int64) (model.TransactionDetail, error) {
	var detail model.TransactionDetail
	resp, err := c.req.Do(ctx, Request{Method: http.MethodGet, Path: fmt.Sprintf("/transacao/%d", id)})
	if err != nil {
		return detail, err
	}
	if err := resp.Decode(&detail); err != nil {
		return detail, err
	}
	if detail.ID == 0 {
		detail.ID = id
	}
	return detail, nil
}

// RenameTransaction renames a transaction. The returned summary is nil when
// the response body does not carry the updated transaction.
func (c *Client) RenameTransaction(ctx context.Context, id int64, name string) (*model.TransactionSummary, error) {
	resp, err := c.req.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/transacao/%d/rename", id),
		Body:   JSON(map[string]string{"nome": name}),
	})
	if err != nil {
		return nil, err
	}

	var updated model.TransactionSummary
	if json.Unmarshal(resp.Body, &updated) != nil || updated.ID != id {
		return nil, nil
	}
	return &updated, nil
}

// DeleteTransaction deletes a transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	_, err := c.req.Do(ctx, Request{Method: http.MethodDelete, Path: fmt.Sprintf("/transacao/%d", id)})
	return err
}

// Extract uploads a PDF and returns the new transaction id with the raw
// items found in it.
func (c *Client) Extract(ctx context.Context, filename string, content io.Reader) (model.Extraction, error) {
	var out model.Extraction
	resp, err := c.req.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/extract_from_pdf",
		Body:   File("file", filename, content),
	})
	if err != nil {
		return out, err
	}
	if err := resp.Decode(&out); err != nil {
		return out, err
	}
	if out.TransactionID <= 0 {
		return out, fmt.Errorf("%w: missing transacao_id", ErrMalformedResponse)
	}
	return out, nil
}

// Process classifies the corrected items of a transaction.
func (c *Client) Process(ctx context.Context, id int64, items []model.ExtractedItem) ([]model.ProcessedItem, error) {
	resp, err := c.req.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("/process_items/%d", id),
		Body:   JSON(itemsPayload[model.ExtractedItem]{Items: items}),
	})
	if err != nil {
		return nil, err
	}
	return decodeItems[model.ProcessedItem](resp)
}

// Save stores the final items of a transaction.
func (c *Client) Save(ctx context.Context, id int64, items []model.ProcessedItem) error {
	_, err := c.req.Do(ctx, Request{
		Method: http.MethodPut,
		Path:   fmt.Sprintf("/update_transaction/%d", id),
		Body:   JSON(itemsPayload[model.ProcessedItem]{Items: items}),
	})
	return err
}

// Export renders the items as a spreadsheet and returns its bytes.
func (c *Client) Export(ctx context.Context, items []model.ProcessedItem) ([]byte, error) {
	resp, err := c.req.Do(ctx, Request{
		Method: http.MethodPost,
		Path:   "/generate_excel",
		Body:   JSON(itemsPayload[model.ProcessedItem]{Items: items}),
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Body) == 0 {
		return nil, fmt.Errorf("%w: empty spreadsheet", ErrMalformedResponse)
	}
	return resp.Body, nil
}

// decodeItems accepts either a bare array or an {"items": [...]} envelope.
func decodeItems[T any](resp *Response) ([]T, error) {
	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '[' {
		var items []T
		if err := resp.Decode(&items); err != nil {
			return nil, err
		}
		return items, nil
	}

	var envelope itemsPayload[T]
	if err := resp.Decode(&envelope); err != nil {
		return nil, err
	}
	if envelope.Items == nil {
		return nil, fmt.Errorf("%w: missing items", ErrMalformedResponse)
	}
	return envelope.Items, nil
}
