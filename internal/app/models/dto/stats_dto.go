package dto

// NamedCount is a label with its number of dossiers
type NamedCount struct {
	Name  string `json:"name" example:"Politecnico di Milano"`
	Count int    `json:"count" example:"4"`
}

// StatsResponse is the international office overview
type StatsResponse struct {
	TotalApplications int            `json:"totalApplications" example:"42"`
	UniqueStudents    int            `json:"uniqueStudents" example:"40"`
	ValidationRate    int            `json:"validationRate" example:"36"`
	ByStatus          map[string]int `json:"byStatus"`
	ByMajor           []NamedCount   `json:"byMajor"`
	TopUniversities   []NamedCount   `json:"topUniversities"`
}
