package services

import (
	"context"
	"io"
	"net/http"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// maxFetchBytes caps how much of a remote page gets read.
const maxFetchBytes = 10 << 20

// Fetcher downloads web pages and converts them to markdown for ingestion.
type Fetcher struct {
	client *http.Client
	logger *logrus.Logger
}

// NewFetcher creates a fetcher with a bounded request timeout.
func NewFetcher(logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

// Markdown fetches url and returns its content converted to markdown.
func (f *Fetcher) Markdown(ctx context.Context, url string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(err, "building request")
	}

	response, err := f.client.Do(request)
	if err != nil {
		return "", errors.Wrapf(err, "fetching %s", url)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetching %s: status %d", url, response.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxFetchBytes))
	if err != nil {
		return "", errors.Wrap(err, "reading response body")
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return "", errors.Wrap(err, "converting html to markdown")
	}

	f.logger.WithFields(logrus.Fields{
		"url":   url,
		"bytes": len(body),
	}).Debug("page fetched")

	return markdown, nil
}
