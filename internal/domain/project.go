package domain

const CollectionProjects = "projects"

// Project is a portfolio entry with an ordered image gallery.
type Project struct {
	Meta
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Location    string   `json:"location,omitempty"`
	Images      []string `json:"images"`
}

type ProjectInput struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Location    string   `json:"location,omitempty"`
	Images      []string `json:"images,omitempty"`
}

func (in ProjectInput) Record(images []string) Project {
	if images == nil {
		images = []string{}
	}
	return Project{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Location:    in.Location,
		Images:      images,
	}
}

type ProjectUpdate struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Location    string   `json:"location,omitempty"`
	Images      []string `json:"images,omitempty"`
}
