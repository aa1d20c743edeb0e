package handler

import (
	"github.com/hiretrack/hiretrack-api/internal/core/domain"
	"github.com/hiretrack/hiretrack-api/internal/core/ports"
)

func toApplicationResponse(app *domain.Application) applicationResponse {
	return applicationResponse{
		ID:          app.ID,
		JobID:       app.JobID,
		ApplicantID: app.ApplicantID,
		ResumeText:  app.ResumeText,
		CoverLetter: app.CoverLetter,
		Status:      app.Status,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
		Links: applicationLinks{
			Self: "/v1/applications/" + app.ID,
			Job:  "/v1/jobs/" + app.JobID,
		},
	}
}

func toApplicationDetailResponse(d *ports.ApplicationDetail) applicationDetailResponse {
	history := make([]historyItem, 0, len(d.History))
	for _, h := range d.History {
		history = append(history, historyItem{Status: h.Status, ChangedAt: h.ChangedAt, ChangedBy: h.ChangedBy})
	}
	return applicationDetailResponse{
		applicationResponse: toApplicationResponse(d.Application),
		Job:                 d.Job,
		StatusHistory:       history,
	}
}

func toApplicationPage(p *ports.ApplicationPage) pageResponse[applicationResponse] {
	items := make([]applicationResponse, 0, len(p.Items))
	for _, app := range p.Items {
		items = append(items, toApplicationResponse(app))
	}
	return pageResponse[applicationResponse]{Items: items, Page: p.Page, PageSize: p.PageSize, Total: p.Total}
}

func toJobPage(p *domain.JobPage) pageResponse[*domain.Job] {
	items := p.Items
	if items == nil {
		items = []*domain.Job{}
	}
	return pageResponse[*domain.Job]{Items: items, Page: p.Page, PageSize: p.PageSize, Total: p.Total}
}

func (r createJobRequest) toInput() ports.JobInput {
	in := ports.JobInput{
		Title:       &r.Title,
		Company:     &r.Company,
		Location:    &r.Location,
		Description: &r.Description,
		Remote:      r.Remote,
	}
	if r.EmploymentType != nil {
		et := domain.EmploymentType(*r.EmploymentType)
		in.EmploymentType = &et
	}
	if r.Status != nil {
		st := domain.JobStatus(*r.Status)
		in.Status = &st
	}
	return in
}

func (r updateJobRequest) toInput() ports.JobInput {
	in := ports.JobInput{
		Title:       r.Title,
		Company:     r.Company,
		Location:    r.Location,
		Description: r.Description,
		Remote:      r.Remote,
	}
	if r.EmploymentType != nil {
		et := domain.EmploymentType(*r.EmploymentType)
		in.EmploymentType = &et
	}
	if r.Status != nil {
		st := domain.JobStatus(*r.Status)
		in.Status = &st
	}
	return in
}
