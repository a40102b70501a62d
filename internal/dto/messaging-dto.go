package dto

type SendEmailDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	To       string `json:"to" validate:"required,email"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Content  string `json:"content" validate:"required"`
	// Имя шаблона; если задано, content игнорируется.
	Template     string                 `json:"template" validate:"omitempty"`
	TemplateData map[string]interface{} `json:"template_data" validate:"omitempty"`
}

type SendSMSDTO struct {
	ClientID     uint64                 `json:"client_id" validate:"required"`
	To           string                 `json:"to" validate:"required"`
	Message      string                 `json:"message" validate:"required,max=1600"`
	Template     string                 `json:"template" validate:"omitempty"`
	TemplateData map[string]interface{} `json:"template_data" validate:"omitempty"`
}

type BulkRecipientDTO struct {
	Email string                 `json:"email"`
	Phone string                 `json:"phone"`
	Data  map[string]interface{} `json:"data"`
}

type SendBulkDTO struct {
	ClientID   uint64             `json:"client_id" validate:"required"`
	Recipients []BulkRecipientDTO `json:"recipients" validate:"required,min=1,dive"`
	Subject    string             `json:"subject" validate:"omitempty,max=200"`
	Content    string             `json:"content" validate:"required"`
}

type BulkResultDTO struct {
	Total  int      `json:"total"`
	Sent   int      `json:"sent"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

type CreateTemplateDTO struct {
	ClientID uint64 `json:"client_id" validate:"required"`
	Type     string `json:"type" validate:"required,oneof=email sms"`
	Name     string `json:"name" validate:"required,max=100"`
	Subject  string `json:"subject" validate:"omitempty,max=200"`
	Content  string `json:"content" validate:"required"`
}

type MessagingAnalyticsDTO struct {
	EmailsTotal uint64  `json:"emails_total"`
	SMSTotal    uint64  `json:"sms_total"`
	SuccessRate float64 `json:"success_rate"`
}
