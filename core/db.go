package core

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}

// CleanOrderings drops orderings on fields not in `allowed`.
func CleanOrderings(ords []DBOrdering, allowed ...string) []DBOrdering {
	clean := make([]DBOrdering, 0, len(ords))
	for _, ord := range ords {
		for _, fld := range allowed {
			if ord.Field == fld {
				clean = append(clean, ord)
				break
			}
		}
	}
	return clean
}
