package dto

type GenerateImageRequest struct {
	Prompt string `json:"prompt" validate:"required,min=1,max=2000"`
}

type GenerateImageResponse struct {
	Image         string `json:"image"` // data:image/png;base64,...
	CreditBalance int    `json:"credit_balance"`
}
