package health

import (
	"context"
	"fmt"
	"net/http"
)

// Prober is the single capability this package needs from the supervised
// process: attempt one liveness check, bounded by ctx.
type Prober interface {
	Probe(ctx context.Context) error
}

func NewHttpProber(endpoint string) *HttpProber {
	return &HttpProber{
		endpoint: endpoint,
		client:   &http.Client{},
	}
}

// HttpProber issues GET requests against the service liveness endpoint.
type HttpProber struct {
	endpoint string
	client   *http.Client
}

func (p *HttpProber) Probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 400 {
		return fmt.Errorf("liveness endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
