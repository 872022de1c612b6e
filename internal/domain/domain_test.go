package domain

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateReportsEveryMissingField(t *testing.T) {
	err := Validate(ContactMessageInput{Email: "not-an-email"})
	require.Error(t, err)

	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.ElementsMatch(t, []string{
		"fullName is required",
		"email must be a valid email address",
		"subject is required",
		"message is required",
	}, verr.Problems)
}

func TestTestimonialInputValidation(t *testing.T) {
	valid := TestimonialInput{Name: "Sara", Rating: 5, Image: "https://example.com/a.jpg", Description: "Great work"}
	require.NoError(t, Validate(valid))

	tooHigh := valid
	tooHigh.Rating = 6
	assert.EqualError(t, Validate(tooHigh), "rating must be at most 5")

	long := valid
	long.Description = strings.Repeat("ب", 201)
	assert.EqualError(t, Validate(long), "description cannot exceed 200 characters")

	arabic200 := valid
	arabic200.Description = strings.Repeat("ب", 200)
	assert.NoError(t, Validate(arabic200))

	badSource := valid
	badSource.Source = "robot"
	assert.EqualError(t, Validate(badSource), "source must be one of [admin user]")
}

func TestTestimonialInputRecordDefaults(t *testing.T) {
	record := TestimonialInput{Name: "  Omar ", Rating: 4, Image: "x", Description: "ok"}.Record()

	assert.Equal(t, "Omar", record.Name)
	assert.Equal(t, "Customer", record.Role)
	assert.Equal(t, TestimonialPending, record.Status)
	assert.Equal(t, SourceUser, record.Source)

	admin := TestimonialInput{Name: "A", Rating: 4, Image: "x", Description: "ok", Source: SourceAdmin}.Record()
	assert.Equal(t, SourceAdmin, admin.Source)
	assert.Equal(t, TestimonialPending, admin.Status)
}

func TestJobInputDefaultsAndEnums(t *testing.T) {
	job := JobInput{Title: "Engineer", Description: "Site work", Location: "Riyadh"}.Record()
	assert.Equal(t, JobTypeFullTime, job.Type)
	assert.Equal(t, JobStatusOpen, job.Status)
	assert.NotNil(t, job.Requirements)

	assert.Error(t, Validate(JobInput{Title: "a", Description: "b", Location: "c", Type: "Gig"}))
	assert.NoError(t, Validate(JobUpdate{Type: JobTypePartTime, Status: JobStatusClosed}))
	assert.Error(t, Validate(JobUpdate{Status: "Paused"}))
}

func TestStatusEnums(t *testing.T) {
	assert.True(t, ValidApplicationStatus(ApplicationStatusUnderReview))
	assert.False(t, ValidApplicationStatus("approved"))
	assert.True(t, ValidContactStatus(ContactStatusReplied))
	assert.False(t, ValidContactStatus(""))
}

func TestPatchFieldsKeepsOnlySuppliedFields(t *testing.T) {
	fields, err := PatchFields(ServiceUpdate{Name: "Design"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"name": "Design"}, fields)

	empty := ""
	fields, err = PatchFields(SettingsUpdate{Facebook: &empty})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"facebook": ""}, fields)
}

func TestStampOnlyFillsMissingMeta(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	var svc Service
	svc.Stamp("id-1", at)
	assert.Equal(t, "id-1", svc.RecordID())
	assert.Equal(t, at, svc.CreatedTime())

	svc.Stamp("id-2", at.Add(time.Hour))
	assert.Equal(t, "id-1", svc.ID)
	assert.Equal(t, at, svc.CreatedAt)

	var msg ContactMessage
	msg.Stamp("m-1", at)
	assert.Equal(t, at, msg.Date)
}

func TestRecordJSONUsesWireNames(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	msg := ContactMessageInput{FullName: "Ali", Email: "a@example.com", Subject: "Hi", Message: "Hello"}.Record()
	msg.Stamp("m-1", at)

	raw, err := json.Marshal(msg)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "m-1", decoded["_id"])
	assert.Equal(t, "2024-01-02T03:04:05Z", decoded["date"])
	assert.Equal(t, ContactStatusNew, decoded["status"])
	assert.Equal(t, "Ali", decoded["fullName"])
}

func TestJobApplicationViewShadowsJobID(t *testing.T) {
	view := JobApplicationView{
		JobApplication: JobApplication{JobID: "job-1", FullName: "Ali"},
		Job:            &JobRef{ID: "job-1", Title: "Engineer"},
	}

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"jobId":{"_id":"job-1","title":"Engineer"}`)
}
