package jira

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	jira "github.com/andygrunwald/go-jira"

	"threadlink/clients"
	"threadlink/core"
)

// JiraClient implements the clients.JiraClient interface using the
// andygrunwald/go-jira SDK. Remote link updates and deletions by internal
// link ID are not covered by the SDK, so those go through raw requests
// against the same REST resource.
type JiraClient struct {
	client    *jira.Client
	iconURL   string
	iconTitle string
}

// NewJiraClient creates a new Jira client authenticated with a bearer
// token. iconURL/iconTitle decorate the remote links it creates and may be
// empty.
func NewJiraClient(serverURL, token, iconURL, iconTitle string) (clients.JiraClient, error) {
	transport := jira.BearerAuthTransport{Token: token}
	client, err := jira.NewClient(transport.Client(), serverURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create jira client: %w", err)
	}

	return &JiraClient{client: client, iconURL: iconURL, iconTitle: iconTitle}, nil
}

// AddRemoteLink creates a remote link on the ticket pointing back at a Slack
// thread and returns the link's internal ID
func (c *JiraClient) AddRemoteLink(ctx context.Context, ticketKey, url, title string) (string, error) {
	remoteLink := &jira.RemoteLink{
		Object: &jira.RemoteLinkObject{
			URL:   url,
			Title: title,
		},
	}
	if c.iconURL != "" {
		remoteLink.Object.Icon = &jira.RemoteLinkIcon{
			Url16x16: c.iconURL,
			Title:    c.iconTitle,
		}
	}

	created, resp, err := c.client.Issue.AddRemoteLinkWithContext(ctx, ticketKey, remoteLink)
	if err != nil {
		return "", classify(fmt.Errorf("failed to add remote link to %s: %w", ticketKey, err), resp)
	}

	return strconv.Itoa(created.ID), nil
}

// UpdateRemoteLink rewrites the URL and title of an existing remote link
func (c *JiraClient) UpdateRemoteLink(ctx context.Context, ticketKey, linkID, url, title string) error {
	body := &jira.RemoteLink{
		Object: &jira.RemoteLinkObject{
			URL:   url,
			Title: title,
		},
	}

	endpoint := remoteLinkEndpoint(ticketKey, linkID)
	req, err := c.client.NewRequestWithContext(ctx, http.MethodPut, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build remote link update request: %w", err)
	}

	resp, err := c.client.Do(req, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to update remote link %s on %s: %w", linkID, ticketKey, err), resp)
	}
	return nil
}

// RemoveRemoteLink deletes a remote link from the ticket
func (c *JiraClient) RemoveRemoteLink(ctx context.Context, ticketKey, linkID string) error {
	endpoint := remoteLinkEndpoint(ticketKey, linkID)
	req, err := c.client.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build remote link delete request: %w", err)
	}

	resp, err := c.client.Do(req, nil)
	if err != nil {
		return classify(fmt.Errorf("failed to remove remote link %s from %s: %w", linkID, ticketKey, err), resp)
	}
	return nil
}

// ValidateRemoteLink reports whether the remote link still exists on the
// ticket. A 404 means the link is gone, not an error.
func (c *JiraClient) ValidateRemoteLink(ctx context.Context, ticketKey, linkID string) (bool, error) {
	endpoint := remoteLinkEndpoint(ticketKey, linkID)
	req, err := c.client.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build remote link lookup request: %w", err)
	}

	resp, err := c.client.Do(req, nil)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, classify(fmt.Errorf("failed to look up remote link %s on %s: %w", linkID, ticketKey, err), resp)
	}
	return true, nil
}

// AddComment posts a comment on the ticket and returns its ID
func (c *JiraClient) AddComment(ctx context.Context, ticketKey, body string) (string, error) {
	comment, resp, err := c.client.Issue.AddCommentWithContext(ctx, ticketKey, &jira.Comment{Body: body})
	if err != nil {
		return "", classify(fmt.Errorf("failed to add comment to %s: %w", ticketKey, err), resp)
	}
	return comment.ID, nil
}

// AttachFile uploads an attachment to the ticket
func (c *JiraClient) AttachFile(ctx context.Context, ticketKey, filename string, r io.Reader) error {
	_, resp, err := c.client.Issue.PostAttachmentWithContext(ctx, ticketKey, r, filename)
	if err != nil {
		return classify(fmt.Errorf("failed to attach %s to %s: %w", filename, ticketKey, err), resp)
	}
	return nil
}

func remoteLinkEndpoint(ticketKey, linkID string) string {
	return fmt.Sprintf("rest/api/2/issue/%s/remotelink/%s", ticketKey, linkID)
}

// classify tags a Jira failure with its retry classification. Client errors
// (missing ticket, bad key, permission denied) are terminal; rate limits,
// server errors and network failures stay transient.
func classify(err error, resp *jira.Response) error {
	if resp == nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return err
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return core.AsTerminal(err)
	default:
		return err
	}
}
