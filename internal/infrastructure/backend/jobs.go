package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"securehire/internal/domain/entity"
	apperrors "securehire/pkg/errors"
)

func (c *Client) CreateJob(ctx context.Context, callerUID string, job *entity.Job) (*entity.Job, error) {
	var out entity.Job
	if err := c.doJSON(ctx, http.MethodPost, "/api/jobs", callerUID, job, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetJob(ctx context.Context, callerUID, jobID string) (*entity.Job, error) {
	var out entity.Job
	if err := c.doJSON(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(jobID), callerUID, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListJobs lists open jobs, or the jobs of one company when companyID is set.
func (c *Client) ListJobs(ctx context.Context, callerUID, companyID string) ([]*entity.Job, error) {
	path := "/api/jobs"
	if companyID != "" {
		path += "?companyId=" + url.QueryEscape(companyID)
	}
	var out []*entity.Job
	if err := c.doJSON(ctx, http.MethodGet, path, callerUID, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Apply(ctx context.Context, callerUID string, app *entity.Application) (*entity.Application, error) {
	path := fmt.Sprintf("/api/jobs/%s/applications", url.PathEscape(app.JobID))
	var out entity.Application
	if err := c.doJSON(ctx, http.MethodPost, path, callerUID, app, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateLogbookEntry(ctx context.Context, callerUID string, entry *entity.LogbookEntry) (*entity.LogbookEntry, error) {
	var out entity.LogbookEntry
	if err := c.doJSON(ctx, http.MethodPost, "/api/logbooks", callerUID, entry, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LatestLogbookEntry returns nil without error when the guard has no entry for the job yet.
func (c *Client) LatestLogbookEntry(ctx context.Context, callerUID, jobID, jobSeekerID string) (*entity.LogbookEntry, error) {
	q := url.Values{}
	q.Set("jobId", jobID)
	q.Set("jobSeekerId", jobSeekerID)

	var out entity.LogbookEntry
	err := c.doJSON(ctx, http.MethodGet, "/api/logbooks/latest?"+q.Encode(), callerUID, nil, &out)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == apperrors.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}
