package flywheel

import (
	"context"
	"net/url"

	"github.com/flywheel-apps/roi-import/internal/errors"
	"github.com/flywheel-apps/roi-import/internal/hierarchy"
	"github.com/flywheel-apps/roi-import/internal/metadata"
)

// lookupRequest is the body of the path-resolution endpoint.
type lookupRequest struct {
	Path []string `json:"path"`
}

type container struct {
	ID    string `json:"_id"`
	Label string `json:"label"`
}

type sessionPayload struct {
	ID   string         `json:"_id"`
	Info map[string]any `json:"info"`
}

type filePayload struct {
	Name string         `json:"name"`
	Type string         `json:"type"`
	Info map[string]any `json:"info"`
}

type acquisitionPayload struct {
	ID    string        `json:"_id"`
	Label string        `json:"label"`
	Files []filePayload `json:"files"`
}

type userPayload struct {
	ID string `json:"_id"`
}

// LookupSession resolves a group/project/subject/session path to the session
// container id.
func (c *Client) LookupSession(ctx context.Context, group, project, subject, session string) (string, error) {
	var result container
	req := lookupRequest{Path: []string{group, project, subject, session}}
	if err := c.doJSON(ctx, "POST", "/api/lookup", req, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		return "", errors.Newf("lookup returned no container id").
			Component("flywheel").
			Category(errors.CategoryNotFound).
			Context("session", session).
			Build()
	}
	return result.ID, nil
}

// ListSessionObjects returns every file of every acquisition in the session.
func (c *Client) ListSessionObjects(ctx context.Context, sessionID string) ([]hierarchy.Object, error) {
	var acquisitions []acquisitionPayload
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/acquisitions"
	if err := c.doJSON(ctx, "GET", path, nil, &acquisitions); err != nil {
		return nil, err
	}

	var objects []hierarchy.Object
	for _, acq := range acquisitions {
		for _, f := range acq.Files {
			objects = append(objects, hierarchy.Object{
				Name:             f.Name,
				Type:             f.Type,
				AcquisitionID:    acq.ID,
				AcquisitionLabel: acq.Label,
				SessionID:        sessionID,
				Info:             f.Info,
			})
		}
	}
	return objects, nil
}

// SessionInfo returns the session's current metadata document.
func (c *Client) SessionInfo(ctx context.Context, sessionID string) (metadata.Document, error) {
	var session sessionPayload
	path := "/api/sessions/" + url.PathEscape(sessionID)
	if err := c.doJSON(ctx, "GET", path, nil, &session); err != nil {
		return nil, err
	}
	if session.Info == nil {
		return metadata.Document{}, nil
	}
	return metadata.Document(session.Info), nil
}

// UpdateSessionInfo replaces the session's metadata document. A replace-mode
// write keeps the merged document authoritative over concurrent partial
// edits.
func (c *Client) UpdateSessionInfo(ctx context.Context, sessionID string, doc metadata.Document) error {
	path := "/api/sessions/" + url.PathEscape(sessionID) + "/info"
	body := map[string]any{"replace": map[string]any(doc)}
	return c.doJSON(ctx, "POST", path, body, nil)
}

// CurrentUserID identifies the user the API key belongs to.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	var user userPayload
	if err := c.doJSON(ctx, "GET", "/api/users/self", nil, &user); err != nil {
		return "", err
	}
	if user.ID == "" {
		return "", errors.Newf("user lookup returned no id").
			Component("flywheel").
			Category(errors.CategoryStore).
			Build()
	}
	return user.ID, nil
}
