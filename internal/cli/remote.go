package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/compdata/models"
)

// RemoteClient fetches reports from a running compdata server.
type RemoteClient struct {
	client *resty.Client
}

func NewRemoteClient(serverURL string, timeout time.Duration) *RemoteClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(serverURL, "/"))
	client.SetTimeout(timeout)
	return &RemoteClient{client: client}
}

// Report posts company to /get_compdata. Non-200 answers are returned as
// errors carrying the server's detail message.
func (rc *RemoteClient) Report(ctx context.Context, company string) (*models.AggregatedReport, error) {
	resp, err := rc.client.R().
		SetContext(ctx).
		SetBody(models.CompanyRequest{CompanyName: company}).
		Post("/get_compdata")
	if err != nil {
		return nil, fmt.Errorf("request report: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(resp.Body(), &detail) == nil && detail.Detail != "" {
			return nil, fmt.Errorf("server returned HTTP %d: %s", resp.StatusCode(), detail.Detail)
		}
		return nil, fmt.Errorf("server returned HTTP %d", resp.StatusCode())
	}

	var report models.AggregatedReport
	if err := json.Unmarshal(resp.Body(), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &report, nil
}
