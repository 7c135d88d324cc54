package validation

// RequiredECTS is the credit load a learning agreement is expected to reach
const RequiredECTS = 30

// ECTSSummary is the informational credit progress of a dossier
type ECTSSummary struct {
	Total    int     `json:"total"`
	Required int     `json:"required"`
	Percent  float64 `json:"percent"`
	Complete bool    `json:"complete"`
	Color    string  `json:"color"`
}

// SummarizeECTS sums credits against required. It never blocks submission.
func SummarizeECTS(credits []int, required int) ECTSSummary {
	if required <= 0 {
		required = RequiredECTS
	}
	total := 0
	for _, c := range credits {
		total += c
	}

	s := ECTSSummary{Total: total, Required: required}
	s.Percent = float64(total) / float64(required) * 100
	s.Complete = total >= required

	switch {
	case s.Complete:
		s.Color = "green"
	case s.Percent >= 50:
		s.Color = "yellow"
	default:
		s.Color = "red"
	}
	return s
}
