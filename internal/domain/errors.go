package domain

import "errors"

var (
	// Lease errors
	ErrInvalidLease       = errors.New("invalid lease terms")
	ErrLeaseNotFound      = errors.New("lease not found")
	ErrLeaseExists        = errors.New("lease number already exists")
	ErrInvalidLeaseStatus = errors.New("invalid lease status transition")

	// Calculation errors
	ErrCalculationNotFound = errors.New("calculation not found")
	ErrCalculationExists   = errors.New("calculation already exists for lease and period")
	ErrRunInProgress       = errors.New("period-end run already in progress")

	// Posting errors
	ErrAlreadyPosted       = errors.New("calculation already posted")
	ErrNoValidCalculations = errors.New("no valid calculations found for posting")
	ErrPostingInProgress   = errors.New("calculation is being posted by another request")
	ErrIntegration         = errors.New("erp integration failure")
	ErrAssetNotFound       = errors.New("erp asset not found")

	ErrMissingTenant = errors.New("tenant id is required")
)
