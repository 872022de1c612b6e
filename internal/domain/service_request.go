package domain

const (
	CollectionServiceRequests = "service_requests"

	ServiceRequestStatusNew = "جديد"
)

type ServiceRequest struct {
	DatedMeta
	FullName           string `json:"fullName"`
	Mobile             string `json:"mobile"`
	Email              string `json:"email"`
	ServiceType        string `json:"serviceType"`
	City               string `json:"city"`
	Budget             string `json:"budget,omitempty"`
	Area               string `json:"area,omitempty"`
	ProjectDescription string `json:"projectDescription"`
	Status             string `json:"status"`
}

type ServiceRequestInput struct {
	FullName           string `json:"fullName" validate:"required"`
	Mobile             string `json:"mobile" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	ServiceType        string `json:"serviceType" validate:"required"`
	City               string `json:"city" validate:"required"`
	Budget             string `json:"budget,omitempty"`
	Area               string `json:"area,omitempty"`
	ProjectDescription string `json:"projectDescription" validate:"required"`
}

func (in ServiceRequestInput) Record() ServiceRequest {
	return ServiceRequest{
		FullName:           in.FullName,
		Mobile:             in.Mobile,
		Email:              in.Email,
		ServiceType:        in.ServiceType,
		City:               in.City,
		Budget:             in.Budget,
		Area:               in.Area,
		ProjectDescription: in.ProjectDescription,
		Status:             ServiceRequestStatusNew,
	}
}
