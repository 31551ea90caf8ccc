package entity

// Limit == 0 means no limit.
type PaginationInput struct {
	Limit  int
	Offset int
}

func NewPaginationInput(limit int, offset int) *PaginationInput {
	return &PaginationInput{
		Limit:  limit,
		Offset: offset,
	}
}

func (p *PaginationInput) Unbounded() bool {
	return p == nil || p.Limit <= 0
}
