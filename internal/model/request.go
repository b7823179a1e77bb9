package model

type SendMessageRequest struct {
	Message string `json:"message"`
}

type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// TranslateRequest targets the preferred language when TargetLanguage is empty.
type TranslateRequest struct {
	TargetLanguage string `json:"target_language"`
}

type SummarizeRequest struct {
	Options SummarizeOptions `json:"options"`
}

type OnboardRequest struct {
	Name   string `json:"name" binding:"required"`
	Email  string `json:"email" binding:"required"`
	Avatar string `json:"avatar"`
}

type TargetLanguageRequest struct {
	TargetLanguage string `json:"target_language" binding:"required"`
}
