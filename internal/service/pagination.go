package service

const DefaultLimit = 100

// Page is a skip/limit window. Non-positive limits and negative skips fall
// back to the defaults.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) normalized() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Skip < 0 {
		p.Skip = 0
	}
	return p
}
