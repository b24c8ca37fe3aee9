package dto

import (
	"anoa.com/safereport/internal/entity"
	reportDto "anoa.com/safereport/internal/modules/report/dto"
)

// UpdateProfileInput leaves a field unchanged when it is nil.
type UpdateProfileInput struct {
	FirstName *string `json:"first_name" binding:"omitempty,min=1,max=100"`
	LastName  *string `json:"last_name" binding:"omitempty,max=100"`
	LRN       *string `json:"lrn" binding:"omitempty,lrn"`
}

type ProfileOverview struct {
	Profile       *entity.Profile            `json:"profile"`
	RecentReports []reportDto.ReportResponse `json:"recent_reports"`
}
