package gmail

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

const (
	// See https://developers.google.com/gmail/api/reference/quota
	quotaUnitsPerMessagesGet  = 5
	quotaUnitsPerMessagesList = 5
	quotaUnitsPerLabelsList   = 1

	quotaUnitsPerSecond = 250
	rateLimitPerSecond  = quotaUnitsPerSecond * 0.8
	rateLimitBurst      = quotaUnitsPerSecond
)

var (
	// ErrMessageNotFound reports a message ID the provider does not know
	ErrMessageNotFound = errors.New("gmail message not found")
)

// Client wraps the gmail.Service and provides convenience methods
type Client struct {
	Service *gmail.Service
	limiter *rate.Limiter
}

// NewClient creates a new Gmail client
func NewClient(service *gmail.Service) *Client {
	return &Client{
		Service: service,
		limiter: rate.NewLimiter(rateLimitPerSecond, rateLimitBurst),
	}
}

func (c *Client) wait(ctx context.Context, units int) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.WaitN(ctx, units)
}

// ListMessagesPage returns a page of INBOX messages matching the optional
// Gmail query, plus the nextPageToken
func (c *Client) ListMessagesPage(ctx context.Context, query string, maxResults int64, pageToken string) ([]*gmail.Message, string, error) {
	if err := c.wait(ctx, quotaUnitsPerMessagesList); err != nil {
		return nil, "", err
	}

	call := c.Service.Users.Messages.List("me").
		LabelIds("INBOX").
		Context(ctx)
	if query != "" {
		call = call.Q(query)
	}
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}

	res, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("could not list messages: %w", err)
	}

	return res.Messages, res.NextPageToken, nil
}

// GetMessage retrieves a full message by ID
func (c *Client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	if err := c.wait(ctx, quotaUnitsPerMessagesGet); err != nil {
		return nil, err
	}

	msg, err := c.Service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
		}
		return nil, fmt.Errorf("could not get message: %w", err)
	}

	return msg, nil
}

// GetMessageMetadata retrieves only the named headers plus snippet and
// label IDs, which is all the inbox listing needs
func (c *Client) GetMessageMetadata(ctx context.Context, id string, headers ...string) (*gmail.Message, error) {
	if err := c.wait(ctx, quotaUnitsPerMessagesGet); err != nil {
		return nil, err
	}

	call := c.Service.Users.Messages.Get("me", id).Format("metadata").Context(ctx)
	if len(headers) > 0 {
		call = call.MetadataHeaders(headers...)
	}

	msg, err := call.Do()
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("message %s: %w", id, ErrMessageNotFound)
		}
		return nil, fmt.Errorf("could not get message metadata: %w", err)
	}

	return msg, nil
}

// ListLabels returns all labels
func (c *Client) ListLabels(ctx context.Context) ([]*gmail.Label, error) {
	if err := c.wait(ctx, quotaUnitsPerLabelsList); err != nil {
		return nil, err
	}

	res, err := c.Service.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not list labels: %w", err)
	}

	return res.Labels, nil
}

func isNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
