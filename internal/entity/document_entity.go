package entity

const MasterDocumentId = "master"

type DocumentSection struct {
	Id      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type MasterDocument struct {
	Sections    []DocumentSection `json:"sections"`
	LastUpdated int64             `json:"lastUpdated"`
}

func DefaultMasterDocument() MasterDocument {
	return MasterDocument{Sections: []DocumentSection{}, LastUpdated: 0}
}

func (d MasterDocument) Clone() MasterDocument {
	c := d
	c.Sections = append([]DocumentSection{}, d.Sections...)
	return c
}
