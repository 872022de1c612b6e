package domain

const (
	CollectionJobs = "jobs"

	JobTypeFullTime   = "Full-time"
	JobTypePartTime   = "Part-time"
	JobTypeContract   = "Contract"
	JobTypeInternship = "Internship"

	JobStatusOpen   = "Open"
	JobStatusClosed = "Closed"
)

type Job struct {
	Meta
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Location     string   `json:"location"`
	Type         string   `json:"type"`
	Status       string   `json:"status"`
}

type JobInput struct {
	Title        string   `json:"title" validate:"required"`
	Description  string   `json:"description" validate:"required"`
	Requirements []string `json:"requirements,omitempty"`
	Location     string   `json:"location" validate:"required"`
	Type         string   `json:"type,omitempty" validate:"omitempty,oneof=Full-time Part-time Contract Internship"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=Open Closed"`
}

func (in JobInput) Record() Job {
	job := Job{
		Title:        in.Title,
		Description:  in.Description,
		Requirements: in.Requirements,
		Location:     in.Location,
		Type:         in.Type,
		Status:       in.Status,
	}
	if job.Requirements == nil {
		job.Requirements = []string{}
	}
	if job.Type == "" {
		job.Type = JobTypeFullTime
	}
	if job.Status == "" {
		job.Status = JobStatusOpen
	}
	return job
}

type JobUpdate struct {
	Title        string   `json:"title,omitempty"`
	Description  string   `json:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
	Location     string   `json:"location,omitempty"`
	Type         string   `json:"type,omitempty" validate:"omitempty,oneof=Full-time Part-time Contract Internship"`
	Status       string   `json:"status,omitempty" validate:"omitempty,oneof=Open Closed"`
}
