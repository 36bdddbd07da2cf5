package models

// CompanyContext is the authenticated company supplied by the upstream
// platform with every evaluation. Profile fields tagged required must be
// filled before a questionnaire may be evaluated.
type CompanyContext struct {
	CompanyID    string `json:"companyId" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Address      string `json:"address" validate:"required"`
	TaxNumber    string `json:"taxNumber" validate:"required"`
	Manager      string `json:"manager" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	IndustryID   string `json:"industryId,omitempty" validate:"omitempty"`
	IndustryName string `json:"industryName,omitempty" validate:"omitempty"`
}
