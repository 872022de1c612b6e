package domain

const (
	CollectionContactMessages = "contact_messages"

	ContactStatusNew     = "جديد"
	ContactStatusRead    = "تمت القراءة"
	ContactStatusReplied = "تم الرد"
)

type ContactMessage struct {
	DatedMeta
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Subject  string `json:"subject"`
	Message  string `json:"message"`
	Status   string `json:"status"`
}

type ContactMessageInput struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Subject  string `json:"subject" validate:"required"`
	Message  string `json:"message" validate:"required"`
}

func (in ContactMessageInput) Record() ContactMessage {
	return ContactMessage{
		FullName: in.FullName,
		Email:    in.Email,
		Subject:  in.Subject,
		Message:  in.Message,
		Status:   ContactStatusNew,
	}
}

func ValidContactStatus(status string) bool {
	return oneOf(status, ContactStatusNew, ContactStatusRead, ContactStatusReplied)
}

// StatusUpdate is the body of the inbox status endpoints.
type StatusUpdate struct {
	Status string `json:"status" validate:"required"`
}
