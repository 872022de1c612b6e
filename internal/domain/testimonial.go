package domain

import "strings"

const (
	CollectionTestimonials = "testimonials"

	TestimonialPending  = "pending"
	TestimonialApproved = "approved"

	SourceAdmin = "admin"
	SourceUser  = "user"

	defaultTestimonialRole = "Customer"
)

type Testimonial struct {
	Meta
	Name        string `json:"name"`
	Role        string `json:"role"`
	Rating      int    `json:"rating"`
	Image       string `json:"image"`
	Description string `json:"description"`
	Status      string `json:"status"`
	Source      string `json:"source"`
}

type TestimonialInput struct {
	Name        string `json:"name" validate:"required"`
	Role        string `json:"role,omitempty"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Image       string `json:"image" validate:"required"`
	Description string `json:"description" validate:"required,max=200"`
	Source      string `json:"source,omitempty" validate:"omitempty,oneof=admin user"`
}

// Record builds a pending testimonial. Submissions always start pending,
// whatever their source.
func (in TestimonialInput) Record() Testimonial {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = defaultTestimonialRole
	}
	source := in.Source
	if source == "" {
		source = SourceUser
	}
	return Testimonial{
		Name:        strings.TrimSpace(in.Name),
		Role:        role,
		Rating:      in.Rating,
		Image:       in.Image,
		Description: in.Description,
		Status:      TestimonialPending,
		Source:      source,
	}
}

type TestimonialUpdate struct {
	Name        string `json:"name,omitempty"`
	Role        string `json:"role,omitempty"`
	Rating      int    `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Image       string `json:"image,omitempty"`
	Description string `json:"description,omitempty" validate:"omitempty,max=200"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=pending approved"`
	Source      string `json:"source,omitempty" validate:"omitempty,oneof=admin user"`
}
