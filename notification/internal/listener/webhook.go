package listener

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	inHttp "github.com/Alturino/gearshare/internal/http"
	"github.com/Alturino/gearshare/order/pkg/response"
)

type Webhook struct {
	client *http.Client
	url    string
}

func NewWebhook(url string, timeout time.Duration) *Webhook {
	return &Webhook{
		url: url,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}
}

// Post treats any non 2xx answer as a failure.
func (w *Webhook) Post(c context.Context, event response.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed marshaling event with error=%w", err)
	}
	req, err := http.NewRequestWithContext(c, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed creating webhook request with error=%w", err)
	}
	req.Header.Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJSON)

	res, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed posting webhook with error=%w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("failed posting webhook with status=%d", res.StatusCode)
	}
	return nil
}
