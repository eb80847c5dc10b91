package jira

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockJiraClient struct {
	mock.Mock
}

func (m *MockJiraClient) AddRemoteLink(ctx context.Context, ticketKey, url, title string) (string, error) {
	args := m.Called(ctx, ticketKey, url, title)
	return args.String(0), args.Error(1)
}

func (m *MockJiraClient) UpdateRemoteLink(ctx context.Context, ticketKey, linkID, url, title string) error {
	args := m.Called(ctx, ticketKey, linkID, url, title)
	return args.Error(0)
}

func (m *MockJiraClient) RemoveRemoteLink(ctx context.Context, ticketKey, linkID string) error {
	args := m.Called(ctx, ticketKey, linkID)
	return args.Error(0)
}

func (m *MockJiraClient) ValidateRemoteLink(ctx context.Context, ticketKey, linkID string) (bool, error) {
	args := m.Called(ctx, ticketKey, linkID)
	return args.Bool(0), args.Error(1)
}

func (m *MockJiraClient) AddComment(ctx context.Context, ticketKey, body string) (string, error) {
	args := m.Called(ctx, ticketKey, body)
	return args.String(0), args.Error(1)
}

func (m *MockJiraClient) AttachFile(ctx context.Context, ticketKey, filename string, r io.Reader) error {
	args := m.Called(ctx, ticketKey, filename, r)
	return args.Error(0)
}
