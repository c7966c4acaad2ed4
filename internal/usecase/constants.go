package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds each per-lease period-end transaction and
	// the transaction that marks a posted batch.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultERPTimeout bounds a single ERP posting call.
	DefaultERPTimeout = 30 * time.Second

	// DefaultLockTTL is how long a period-end or posting lock survives a crashed holder.
	DefaultLockTTL = 5 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// BatchReferenceLayout formats the IFRS16-{timestamp} batch reference.
	BatchReferenceLayout = "20060102-150405"

	// PeriodReferenceLayout formats the period part of a leg reference.
	PeriodReferenceLayout = "2006-01"
)
