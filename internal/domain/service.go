package domain

const CollectionServices = "services"

type Service struct {
	Meta
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
}

type ServiceInput struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
}

func (in ServiceInput) Record() Service {
	return Service{
		Name:        in.Name,
		Description: in.Description,
		Icon:        in.Icon,
		Image:       in.Image,
	}
}

// ServiceUpdate changes only the non-empty fields it carries.
type ServiceUpdate struct {
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Image       string `json:"image,omitempty"`
}
