package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/equipeadalove/aduana/internal/api"
	"github.com/equipeadalove/aduana/internal/model"
	"github.com/equipeadalove/aduana/internal/nav"
	"github.com/equipeadalove/aduana/internal/testutil"
)

func newClient(t *testing.T, fake *testutil.FakeAPI, ts *testutil.TestSession, breaker api.BreakerSettings) *api.Client {
	t.Helper()
	r, err := api.NewRequester(api.Options{BaseURL: fake.URL() + "/api/", Timeout: 5 * time.Second, Breaker: breaker}, ts.Session)
	require.NoError(t, err)
	return api.NewClient(r)
}

func TestDo_AttachesBearerAndJSON(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/api/transacoes", testutil.JSON(http.StatusOK, []map[string]any{
		{"id": 1, "nome": "first", "created_at": "2024-03-02T10:00:00"},
	}))
	ts := testutil.SetupTestSession(t, "tok-1", "ana@example.com")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	list, err := client.Transactions(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "first", list[0].Title())

	req := fake.Requests()[0]
	assert.Equal(t, "Bearer tok-1", req.Header.Get("Authorization"))
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
	assert.NotEmpty(t, req.Header.Get("X-Request-ID"))
}

func TestDo_NoTokenNoAuthorization(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/api/transacoes", testutil.JSON(http.StatusOK, []any{}))
	ts := testutil.SetupTestSession(t, "", "")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	_, err := client.Transactions(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fake.Requests()[0].Header.Get("Authorization"))
}

func TestDo_UnauthorizedExpiresSession(t *testing.T) {
	endpoints := []struct {
		call func(*api.Client) error
		name string
	}{
		{name: "list", call: func(c *api.Client) error { _, err := c.Transactions(context.Background()); return err }},
		{name: "process", call: func(c *api.Client) error {
			_, err := c.Process(context.Background(), 7, nil)
			return err
		}},
		{name: "save", call: func(c *api.Client) error { return c.Save(context.Background(), 7, nil) }},
		{name: "delete", call: func(c *api.Client) error { return c.DeleteTransaction(context.Background(), 7) }},
	}

	for _, tt := range endpoints {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeAPI(t)
			for _, route := range []struct{ method, path string }{
				{http.MethodGet, "/api/transacoes"},
				{http.MethodPost, "/api/process_items/7"},
				{http.MethodPut, "/api/update_transaction/7"},
				{http.MethodDelete, "/api/transacao/7"},
			} {
				fake.Handle(route.method, route.path, testutil.Detail(http.StatusUnauthorized, "expired"))
			}
			ts := testutil.SetupTestSession(t, "tok-1", "ana@example.com")
			client := newClient(t, fake, ts, api.BreakerSettings{})

			err := tt.call(client)
			assert.ErrorIs(t, err, api.ErrUnauthorized)
			assert.False(t, ts.Session.IsAuthenticated())
			assert.Equal(t, nav.To(nav.Login), ts.Navigator.Last())
			_, stored := ts.StoredToken(t)
			assert.False(t, stored)
		})
	}
}

func TestLogin_WrongCredentialsKeepsDetail(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodPost, "/api/auth/login", testutil.Detail(http.StatusUnauthorized, "Incorrect email or password"))
	ts := testutil.SetupTestSession(t, "", "")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	_, err := client.Login(context.Background(), "ana@example.com", "bad")
	var apiErr *api.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "Incorrect email or password", api.Message(err, "login failed"))
	assert.Empty(t, ts.Navigator.Routes())
}

func TestLogin_FormEncoded(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodPost, "/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		assert.Equal(t, "ana@example.com", r.PostForm.Get("username"))
		assert.Equal(t, "secret", r.PostForm.Get("password"))
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"data": map[string]string{"access_token": "new-token"}})
	})
	ts := testutil.SetupTestSession(t, "", "")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	token, err := client.Login(context.Background(), "ana@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "new-token", token)
	assert.Equal(t, "application/x-www-form-urlencoded", fake.Requests()[0].Header.Get("Content-Type"))
}

func TestExtract_Multipart(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodPost, "/api/extract_from_pdf", func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data; boundary="))
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer func() { _ = file.Close() }()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "invoice.pdf", header.Filename)
		assert.Equal(t, "%PDF-fake", string(data))
		testutil.WriteJSON(w, http.StatusOK, map[string]any{
			"transacao_id": 7,
			"items":        []map[string]string{{"partnumber": "AB-12", "descricao_raw": "raw text"}},
		})
	})
	ts := testutil.SetupTestSession(t, "tok", "a@b.c")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	out, err := client.Extract(context.Background(), "invoice.pdf", strings.NewReader("%PDF-fake"))
	require.NoError(t, err)
	assert.Equal(t, int64(7), out.TransactionID)
	assert.Equal(t, []model.ExtractedItem{{PartNumber: "AB-12", RawDescription: "raw text"}}, out.Items)
}

func TestProcess_AcceptsArrayAndEnvelope(t *testing.T) {
	item := map[string]any{"partnumber": "AB-12X", "is_new_manufacturer": true}
	for name, body := range map[string]any{
		"array":    []any{item},
		"envelope": map[string]any{"items": []any{item}},
	} {
		t.Run(name, func(t *testing.T) {
			fake := testutil.NewFakeAPI(t)
			fake.Handle(http.MethodPost, "/api/process_items/7", func(w http.ResponseWriter, r *http.Request) {
				var payload struct {
					Items []model.ExtractedItem `json:"items"`
				}
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
				if assert.Len(t, payload.Items, 1) {
					assert.Equal(t, "AB-12X", payload.Items[0].PartNumber)
				}
				testutil.WriteJSON(w, http.StatusOK, body)
			})
			ts := testutil.SetupTestSession(t, "tok", "a@b.c")
			client := newClient(t, fake, ts, api.BreakerSettings{})

			items, err := client.Process(context.Background(), 7, []model.ExtractedItem{{PartNumber: "AB-12X"}})
			require.NoError(t, err)
			require.Len(t, items, 1)
			assert.True(t, items[0].IsNewManufacturer)
		})
	}
}

func TestMalformedResponse(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/api/transacoes", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})
	fake.Handle(http.MethodGet, "/api/user/profile", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	ts := testutil.SetupTestSession(t, "tok", "a@b.c")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	_, err := client.Transactions(context.Background())
	assert.ErrorIs(t, err, api.ErrMalformedResponse)
	assert.Equal(t, "Could not load history.", api.Message(err, "Could not load history."))

	_, err = client.Profile(context.Background())
	assert.ErrorIs(t, err, api.ErrMalformedResponse)
}

func TestAPIError_ValidationDetailList(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodPost, "/api/users", testutil.JSON(http.StatusUnprocessableEntity, map[string]any{
		"detail": []map[string]string{{"msg": "invalid email"}, {"msg": "password too short"}},
	}))
	ts := testutil.SetupTestSession(t, "", "")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	err := client.Register(context.Background(), model.Registration{Name: "Ana", Email: "x", Password: "1"})
	assert.Equal(t, "invalid email; password too short", api.Message(err, "failed"))
}

func TestRename_UsesResponseBodyWhenPresent(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodPut, "/api/transacao/3/rename", testutil.JSON(http.StatusOK, map[string]any{
		"id": 3, "nome": "Renamed", "created_at": "2024-03-02T10:00:00",
	}))
	fake.Handle(http.MethodPut, "/api/transacao/4/rename", testutil.JSON(http.StatusOK, map[string]any{"message": "ok"}))
	ts := testutil.SetupTestSession(t, "tok", "a@b.c")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	updated, err := client.RenameTransaction(context.Background(), 3, "Renamed")
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "Renamed", updated.Title())

	updated, err = client.RenameTransaction(context.Background(), 4, "Other")
	require.NoError(t, err)
	assert.Nil(t, updated)
}

func TestExport_ReturnsBytes(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodPost, "/api/generate_excel", testutil.Bytes("application/octet-stream", []byte("PK\x03\x04")))
	ts := testutil.SetupTestSession(t, "tok", "a@b.c")
	client := newClient(t, fake, ts, api.BreakerSettings{})

	data, err := client.Export(context.Background(), []model.ProcessedItem{{PartNumber: "A"}})
	require.NoError(t, err)
	assert.Equal(t, []byte("PK\x03\x04"), data)
}

func TestBreaker_OpensOnServerErrors(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/api/transacoes", testutil.Detail(http.StatusBadGateway, "upstream down"))
	ts := testutil.SetupTestSession(t, "tok", "a@b.c")
	client := newClient(t, fake, ts, api.BreakerSettings{
		Enabled:      true,
		MinRequests:  2,
		FailureRatio: 0.5,
		OpenTimeout:  time.Minute,
	})

	for range 2 {
		_, err := client.Transactions(context.Background())
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "upstream down", apiErr.Detail)
	}

	_, err := client.Transactions(context.Background())
	assert.ErrorIs(t, err, api.ErrServiceUnavailable)
	assert.Equal(t, 2, fake.Count(http.MethodGet, "/api/transacoes"))
}

func TestBreaker_IgnoresClientErrors(t *testing.T) {
	fake := testutil.NewFakeAPI(t)
	fake.Handle(http.MethodGet, "/api/transacao/9", testutil.Detail(http.StatusNotFound, "not found"))
	ts := testutil.SetupTestSession(t, "tok", "a@b.c")
	client := newClient(t, fake, ts, api.BreakerSettings{
		Enabled:      true,
		MinRequests:  1,
		FailureRatio: 0.1,
		OpenTimeout:  time.Minute,
	})

	for range 3 {
		_, err := client.GetTransaction(context.Background(), 9)
		var apiErr *api.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
	}
	assert.Equal(t, 3, fake.Count(http.MethodGet, "/api/transacao/9"))
}

func TestMessage(t *testing.T) {
	assert.Empty(t, api.Message(nil, "x"))
	assert.Equal(t, "fallback", api.Message(errors.New("dial tcp: refused"), "fallback"))
	assert.Equal(t, "fallback", api.Message(&api.APIError{Status: 500}, "fallback"))
	assert.Contains(t, api.Message(api.ErrUnauthorized, "fallback"), "Session expired")
}

func TestNewRequester_InvalidURL(t *testing.T) {
	_, err := api.NewRequester(api.Options{BaseURL: "not a url"}, nil)
	assert.Error(t, err)
}
