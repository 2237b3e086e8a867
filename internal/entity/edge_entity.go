package entity

type Edge struct {
	Id     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func (e Edge) Touches(nodeId string) bool {
	return e.Source == nodeId || e.Target == nodeId
}
