package channel

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsApp_Send(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	wa := NewWhatsApp(WhatsAppConfig{Endpoint: srv.URL, Token: "tok", Sender: "+14155550199"})

	err := wa.Send(context.Background(), "+14155550100", testMsg)

	require.NoError(t, err)
	assert.Equal(t, "+14155550100", payload["to"])
	assert.Equal(t, "+14155550199", payload["from"])
	assert.Equal(t, "tok", payload["token"])
	assert.Equal(t, testMsg.Text(), payload["text"])
	assert.Equal(t, "whatsapp", wa.Channel())
}

func TestWhatsApp_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	wa := NewWhatsApp(WhatsAppConfig{Endpoint: srv.URL, Token: "tok"})

	err := wa.Send(context.Background(), "+14155550100", testMsg)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "whatsapp returned 502: upstream down")
}

func TestWhatsApp_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	wa := NewWhatsApp(WhatsAppConfig{Endpoint: srv.URL, Token: "tok", Timeout: 50 * time.Millisecond})

	err := wa.Send(context.Background(), "+14155550100", testMsg)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWhatsApp_NotConfigured(t *testing.T) {
	err := NewWhatsApp(WhatsAppConfig{}).Send(context.Background(), "+14155550100", testMsg)

	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSMS_Send(t *testing.T) {
	var form map[string]string
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey = r.Header.Get("apikey")
		require.NoError(t, r.ParseForm())
		form = map[string]string{
			"mobile":   r.PostForm.Get("mobile"),
			"msg":      r.PostForm.Get("msg"),
			"senderid": r.PostForm.Get("senderid"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	sms := NewSMS(SMSConfig{Endpoint: srv.URL, APIKey: "key", SenderID: "FOLLOWUP"})

	err := sms.Send(context.Background(), "+14155550100", testMsg)

	require.NoError(t, err)
	assert.Equal(t, "key", apiKey)
	assert.Equal(t, "+14155550100", form["mobile"])
	assert.Equal(t, "FOLLOWUP", form["senderid"])
	assert.Equal(t, testMsg.Text(), form["msg"])
	assert.Equal(t, "sms", sms.Channel())
}

func TestSMS_NotConfigured(t *testing.T) {
	err := NewSMS(SMSConfig{Endpoint: "http://127.0.0.1:1"}).Send(context.Background(), "+14155550100", testMsg)

	assert.ErrorIs(t, err, ErrNotConfigured)
}
