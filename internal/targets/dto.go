package targets

// AllocateUniformRequest creates one slot per business unit with the same target.
type AllocateUniformRequest struct {
	Month  int     `json:"month" validate:"required,min=1,max=12"`
	Year   int     `json:"year" validate:"required,min=2000,max=2050"`
	Target float64 `json:"target" validate:"required,gt=0"`
}

// AllocatePerUnitRequest creates slots for the listed business units only.
type AllocatePerUnitRequest struct {
	Month int               `json:"month" validate:"required,min=1,max=12"`
	Year  int               `json:"year" validate:"required,min=2000,max=2050"`
	Units map[int64]float64 `json:"units" validate:"required,min=1,dive,gt=0"`
}

// UpdateSlotRequest mutates a single slot. Difference and percentage are
// recomputed only when both target and actual are supplied.
type UpdateSlotRequest struct {
	Month          *int     `json:"month" validate:"omitempty,min=1,max=12"`
	Year           *int     `json:"year" validate:"omitempty,min=2000,max=2050"`
	BusinessUnitID *int64   `json:"business_unit_id"`
	Target         *float64 `json:"target" validate:"omitempty,gte=0"`
	Actual         *float64 `json:"actual" validate:"omitempty,gte=0"`
}

// AllocationResult reports how many slots a bulk allocation created.
type AllocationResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
