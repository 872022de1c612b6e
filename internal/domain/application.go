package domain

const (
	CollectionJobApplications = "job_applications"

	ApplicationStatusNew         = "جديد"
	ApplicationStatusUnderReview = "قيد المراجعة"
	ApplicationStatusAccepted    = "مقبول"
	ApplicationStatusRejected    = "مرفوض"
)

// JobApplication stores the CV as submitted: a URL or a base64 data URI.
// Once archived to object storage CVObjectKey names the copy.
type JobApplication struct {
	DatedMeta
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Mobile      string `json:"mobile"`
	Position    string `json:"position"`
	JobID       string `json:"jobId,omitempty"`
	CV          string `json:"cv"`
	CoverLetter string `json:"coverLetter,omitempty"`
	Status      string `json:"status"`
	CVObjectKey string `json:"cvObjectKey,omitempty"`
}

type JobApplicationInput struct {
	FullName    string `json:"fullName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Mobile      string `json:"mobile" validate:"required"`
	Position    string `json:"position" validate:"required"`
	JobID       string `json:"jobId,omitempty"`
	CV          string `json:"cv" validate:"required"`
	CoverLetter string `json:"coverLetter,omitempty"`
}

func (in JobApplicationInput) Record() JobApplication {
	return JobApplication{
		FullName:    in.FullName,
		Email:       in.Email,
		Mobile:      in.Mobile,
		Position:    in.Position,
		JobID:       in.JobID,
		CV:          in.CV,
		CoverLetter: in.CoverLetter,
		Status:      ApplicationStatusNew,
	}
}

// JobRef is the populated form of JobApplication.JobID in admin listings.
type JobRef struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// JobApplicationView shadows the jobId field with the referenced job.
type JobApplicationView struct {
	JobApplication
	Job *JobRef `json:"jobId"`
}

func ValidApplicationStatus(status string) bool {
	return oneOf(status,
		ApplicationStatusNew,
		ApplicationStatusUnderReview,
		ApplicationStatusAccepted,
		ApplicationStatusRejected,
	)
}
