// Package datasource fetches trees and node content from external
// collaborators and classifies their failures for the recovery policy.
//
// Three providers compose: [HTTPProvider] talks to a snapshot endpoint with
// retries, [CachingProvider] layers a cache in front of any provider, and
// [StreamSource] keeps a websocket open for live tree replacements.
package datasource

import (
	"context"
	"errors"
	"net"
	"net/url"

	orberrors "github.com/matzehuels/orbit/pkg/errors"
	"github.com/matzehuels/orbit/pkg/hierarchy"
)

// Provider is the data collaborator the diagram pulls from.
type Provider interface {
	// FetchTree retrieves the tree snapshot for a source identifier.
	FetchTree(ctx context.Context, source string) (*hierarchy.Tree, error)

	// FetchContent retrieves one node's display content.
	FetchContent(ctx context.Context, nodeID string) ([]byte, error)
}

// ClassifyFetchError buckets a fetch failure into the error taxonomy:
// transport problems become network errors (retryable), HTTP 5xx become
// server errors (retryable only when the service was unavailable), and
// anything unrecognised becomes an unknown fetch error. Structured errors
// pass through untouched.
func ClassifyFetchError(err error) error {
	if err == nil {
		return nil
	}
	if code := orberrors.GetCode(err); code != "" {
		return err
	}

	var netErr net.Error
	var urlErr *url.Error
	switch {
	case errors.As(err, &netErr), errors.As(err, &urlErr):
		return orberrors.Wrap(orberrors.ErrCodeNetwork, err, "request failed")
	case errors.Is(err, context.DeadlineExceeded):
		return orberrors.Wrap(orberrors.ErrCodeNetwork, err, "request timed out")
	default:
		return orberrors.Wrap(orberrors.ErrCodeUnknownFetch, err, "fetch failed")
	}
}
