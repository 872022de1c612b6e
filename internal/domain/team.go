package domain

const CollectionTeam = "team"

type Socials struct {
	Facebook string `json:"facebook,omitempty"`
	Whatsapp string `json:"whatsapp,omitempty"`
	Email    string `json:"email,omitempty"`
}

type TeamMember struct {
	Meta
	Name           string   `json:"name"`
	Role           string   `json:"role"`
	Bio            string   `json:"bio,omitempty"`
	Image          string   `json:"image,omitempty"`
	Socials        *Socials `json:"socials,omitempty"`
	Qualifications []string `json:"qualifications"`
}

// TeamMemberInput accepts image as a string or, from older admin clients, an
// array of strings.
type TeamMemberInput struct {
	Name           string   `json:"name" validate:"required"`
	Role           string   `json:"role" validate:"required"`
	Bio            string   `json:"bio,omitempty"`
	Image          any      `json:"image,omitempty"`
	Socials        *Socials `json:"socials,omitempty"`
	Qualifications []string `json:"qualifications,omitempty"`
}

func (in TeamMemberInput) Record(image string) TeamMember {
	qualifications := in.Qualifications
	if qualifications == nil {
		qualifications = []string{}
	}
	return TeamMember{
		Name:           in.Name,
		Role:           in.Role,
		Bio:            in.Bio,
		Image:          image,
		Socials:        in.Socials,
		Qualifications: qualifications,
	}
}

type TeamMemberUpdate struct {
	Name           string   `json:"name,omitempty"`
	Role           string   `json:"role,omitempty"`
	Bio            string   `json:"bio,omitempty"`
	Image          any      `json:"image,omitempty"`
	Socials        *Socials `json:"socials,omitempty"`
	Qualifications []string `json:"qualifications,omitempty"`
}
